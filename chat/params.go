////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package chat

import (
	"encoding/json"
	"time"

	"gitlab.com/elixxir/simplechat/reply"
)

// Params contains the parameters of a chat session.
type Params struct {
	// Reply are the parameters of the reply simulator.
	Reply reply.Params

	// CancelOnSwitch drops pending replies of a conversation when the user
	// switches away from it.
	CancelOnSwitch bool

	// StopTimeout is how long closing the session waits for the reply
	// thread to stop.
	StopTimeout time.Duration
}

// paramsDisk will be the marshal-able and umarshal-able object.
type paramsDisk struct {
	Reply          reply.Params
	CancelOnSwitch bool
	StopTimeout    time.Duration
}

// GetDefaultParams returns a default set of Params.
func GetDefaultParams() Params {
	return Params{
		Reply:          reply.GetDefaultParams(),
		CancelOnSwitch: false,
		StopTimeout:    5 * time.Second,
	}
}

// GetParameters returns the default Params, or override with given
// parameters, if set.
func GetParameters(params string) (Params, error) {
	p := GetDefaultParams()
	if len(params) > 0 {
		err := json.Unmarshal([]byte(params), &p)
		if err != nil {
			return Params{}, err
		}
	}
	return p, nil
}

// MarshalJSON adheres to the json.Marshaler interface.
func (p Params) MarshalJSON() ([]byte, error) {
	pDisk := paramsDisk{
		Reply:          p.Reply,
		CancelOnSwitch: p.CancelOnSwitch,
		StopTimeout:    p.StopTimeout,
	}

	return json.Marshal(&pDisk)
}

// UnmarshalJSON adheres to the json.Unmarshaler interface.
func (p *Params) UnmarshalJSON(data []byte) error {
	pDisk := paramsDisk{
		Reply:          p.Reply,
		CancelOnSwitch: p.CancelOnSwitch,
		StopTimeout:    p.StopTimeout,
	}
	err := json.Unmarshal(data, &pDisk)
	if err != nil {
		return err
	}

	*p = Params{
		Reply:          pDisk.Reply,
		CancelOnSwitch: pDisk.CancelOnSwitch,
		StopTimeout:    pDisk.StopTimeout,
	}

	return nil
}
