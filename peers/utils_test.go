////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package peers

import (
	"github.com/pkg/errors"
	"gitlab.com/elixxir/simplechat/storage"
)

// scriptedSource is a csprng.Source that returns the given bytes in order.
type scriptedSource struct {
	data []byte
}

func (s *scriptedSource) Read(b []byte) (int, error) {
	if len(s.data) < len(b) {
		return 0, errors.New("script exhausted")
	}
	n := copy(b, s.data)
	s.data = s.data[n:]
	return n, nil
}
func (s *scriptedSource) SetSeed([]byte) error { return nil }

// friendSet is a FriendChecker backed by a map.
type friendSet map[string]bool

func (f friendSet) IsFriend(id string) bool { return f[id] }

func testRecords() []storage.AccountRecord {
	return []storage.AccountRecord{
		{ID: "u-a", Email: "a@example.com", DisplayName: "Ann"},
		{ID: "u-b", Email: "b@example.com", DisplayName: "Ben"},
		{ID: "u-c", Email: "c@example.com", DisplayName: "Cat",
			PhoneNumber: "+14155550100"},
	}
}
