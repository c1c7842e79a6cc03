////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package versioned

import (
	"fmt"

	"github.com/pkg/errors"
	jww "github.com/spf13/jwalterweatherman"
	"gitlab.com/elixxir/ekv"
)

// PrefixSeparator is placed between each prefix of a key.
const PrefixSeparator = "/"

// Backend is the subset of ekv.KeyValue that the versioned store relies on.
// Both the ekv filestore and memstore satisfy it.
type Backend interface {
	Set(key string, objectToStore ekv.Marshaler) error
	Get(key string, loadIntoThisObject ekv.Unmarshaler) error
	Delete(key string) error
}

type root struct {
	data Backend
}

// KV stores versioned data under a chain of prefixes.
type KV struct {
	r      *root
	prefix string
}

// NewKV creates a versioned key/value store backed by something implementing
// Backend.
func NewKV(data Backend) *KV {
	return &KV{r: &root{data: data}}
}

// NewMemoryKV returns a KV backed by a new ekv memstore.
func NewMemoryKV() *KV {
	return NewKV(ekv.MakeMemstore())
}

// NewFilestoreKV opens (or creates) an encrypted ekv filestore at baseDir and
// wraps it in a KV.
func NewFilestoreKV(baseDir, password string) (*KV, error) {
	fs, err := ekv.NewFilestore(baseDir, password)
	if err != nil {
		return nil, errors.WithMessagef(err,
			"Failed to open filestore at %s", baseDir)
	}
	return NewKV(fs), nil
}

// Get returns the object stored at the key for the given version. The error
// should be checked with Exists to distinguish a missing key from a failed
// read.
func (v *KV) Get(key string, version uint64) (*Object, error) {
	key = v.makeKey(key, version)
	jww.TRACE.Printf("get %p with key %v", v.r.data, key)

	result := Object{}
	if err := v.r.data.Get(key, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Set upserts the object into the store at the key, using the version held in
// the object.
func (v *KV) Set(key string, object *Object) error {
	key = v.makeKey(key, object.Version)
	jww.TRACE.Printf("set %p with key %v", v.r.data, key)
	return v.r.data.Set(key, object)
}

// Delete removes a given key from the data store.
func (v *KV) Delete(key string, version uint64) error {
	key = v.makeKey(key, version)
	jww.TRACE.Printf("delete %p with key %v", v.r.data, key)
	return v.r.data.Delete(key)
}

// GetPrefix returns the prefix of the KV.
func (v *KV) GetPrefix() string {
	return v.prefix
}

// Prefix returns a new KV sharing the same backend with the prefix appended.
func (v *KV) Prefix(prefix string) *KV {
	return &KV{
		r:      v.r,
		prefix: v.prefix + prefix + PrefixSeparator,
	}
}

// GetFullKey returns the key with all prefixes and the version appended.
func (v *KV) GetFullKey(key string, version uint64) string {
	return v.makeKey(key, version)
}

func (v *KV) makeKey(key string, version uint64) string {
	return fmt.Sprintf("%s%s_%d", v.prefix, key, version)
}

// Exists returns false if the error indicates the element doesn't exist.
func (v *KV) Exists(err error) bool {
	return ekv.Exists(err)
}
