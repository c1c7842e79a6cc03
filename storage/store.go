////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

// Package storage is the durable key/value boundary of a chat session. Values
// are JSON encoded and wrapped in versioned objects. Failures never leave this
// package: a failed read behaves as missing data and a failed write is logged
// and dropped, since everything stored here is a local cache of the session.
package storage

import (
	"encoding/json"

	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/simplechat/storage/versioned"
)

const (
	currentStoreVersion = 0
	userPrefix          = "user:"
)

// KeyValue is the persistence contract consumed by the session components.
// Implementations must not fail on missing keys.
type KeyValue interface {
	// Get returns the raw JSON stored at the key, or false if nothing could
	// be read.
	Get(key string) (json.RawMessage, bool)

	// Load decodes the JSON stored at the key into v. Returns false if the
	// key is missing, unreadable, or does not decode into v.
	Load(key string, v interface{}) bool

	// Set stores v as JSON at the key. Best effort.
	Set(key string, v interface{})

	// Remove deletes the key. Removing a missing key is not an error.
	Remove(key string)
}

// Store implements KeyValue on top of a versioned.KV.
type Store struct {
	kv *versioned.KV
}

// New wraps the versioned KV in a Store.
func New(kv *versioned.KV) *Store {
	return &Store{kv: kv}
}

// NewFilestore opens an encrypted on-disk Store at baseDir.
func NewFilestore(baseDir, password string) (*Store, error) {
	kv, err := versioned.NewFilestoreKV(baseDir, password)
	if err != nil {
		return nil, err
	}
	return New(kv), nil
}

// NewMemory returns a Store that lives only as long as the process.
func NewMemory() *Store {
	return New(versioned.NewMemoryKV())
}

// Prefix returns a Store whose keys are all scoped under name.
func (s *Store) Prefix(name string) *Store {
	return &Store{kv: s.kv.Prefix(name)}
}

// ForUser returns a Store scoped to a single user so that accounts sharing a
// device never see each other's messages, friends or selection.
func (s *Store) ForUser(userID string) *Store {
	return s.Prefix(userPrefix + userID)
}

// Get returns the JSON stored at the key.
func (s *Store) Get(key string) (json.RawMessage, bool) {
	obj, err := s.kv.Get(key, currentStoreVersion)
	if err != nil {
		if s.kv.Exists(err) {
			jww.WARN.Printf("[STORAGE] Failed to read %s, treating as "+
				"empty: %+v", s.kv.GetFullKey(key, currentStoreVersion), err)
		}
		return nil, false
	}
	return obj.Data, true
}

// Load decodes the JSON stored at the key into v.
func (s *Store) Load(key string, v interface{}) bool {
	data, exists := s.Get(key)
	if !exists {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		jww.WARN.Printf("[STORAGE] Failed to decode %s, treating as "+
			"empty: %+v", s.kv.GetFullKey(key, currentStoreVersion), err)
		return false
	}
	return true
}

// Set stores v as JSON at the key.
func (s *Store) Set(key string, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		jww.ERROR.Printf("[STORAGE] Failed to encode value for %s: %+v",
			key, err)
		return
	}

	err = s.kv.Set(key, versioned.NewObject(currentStoreVersion, data))
	if err != nil {
		jww.WARN.Printf("[STORAGE] Failed to write %s: %+v",
			s.kv.GetFullKey(key, currentStoreVersion), err)
	}
}

// Remove deletes the key.
func (s *Store) Remove(key string) {
	err := s.kv.Delete(key, currentStoreVersion)
	if err != nil && s.kv.Exists(err) {
		jww.WARN.Printf("[STORAGE] Failed to remove %s: %+v",
			s.kv.GetFullKey(key, currentStoreVersion), err)
	}
}
