////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package reply

import (
	"encoding/json"
	"time"
)

// Params contains the parameters for the reply Simulator.
type Params struct {
	// MinDelay is the shortest time a reply waits before it is delivered.
	MinDelay time.Duration

	// MaxDelay is the exclusive upper bound of the reply delay.
	MaxDelay time.Duration
}

// paramsDisk will be the marshal-able and umarshal-able object.
type paramsDisk struct {
	MinDelay time.Duration
	MaxDelay time.Duration
}

// GetDefaultParams returns a default set of Params.
func GetDefaultParams() Params {
	return Params{
		MinDelay: 1000 * time.Millisecond,
		MaxDelay: 3000 * time.Millisecond,
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
		MinDelay: p.MinDelay,
		MaxDelay: p.MaxDelay,
	}

	return json.Marshal(&pDisk)
}

// UnmarshalJSON adheres to the json.Unmarshaler interface.
func (p *Params) UnmarshalJSON(data []byte) error {
	pDisk := paramsDisk{
		MinDelay: p.MinDelay,
		MaxDelay: p.MaxDelay,
	}
	err := json.Unmarshal(data, &pDisk)
	if err != nil {
		return err
	}

	*p = Params{
		MinDelay: pDisk.MinDelay,
		MaxDelay: pDisk.MaxDelay,
	}

	return nil
}
