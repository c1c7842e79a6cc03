////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package reply

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

// Tests that GetParameters overrides only the given fields.
func TestGetParameters(t *testing.T) {
	p, err := GetParameters(`{"MaxDelay": 5000000000}`)
	if err != nil {
		t.Fatalf("GetParameters returned an error: %+v", err)
	}

	expected := Params{MinDelay: time.Second, MaxDelay: 5 * time.Second}
	if !reflect.DeepEqual(expected, p) {
		t.Errorf("Unexpected params.\nexpected: %+v\nreceived: %+v",
			expected, p)
	}

	if p, _ = GetParameters(""); !reflect.DeepEqual(GetDefaultParams(), p) {
		t.Errorf("Empty JSON did not give the defaults: %+v", p)
	}

	if _, err = GetParameters("{"); err == nil {
		t.Error("GetParameters did not fail on invalid JSON.")
	}
}

// Tests that Params survive JSON encoding.
func TestParams_JSON(t *testing.T) {
	p := Params{MinDelay: 3 * time.Millisecond, MaxDelay: time.Minute}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Failed to marshal: %+v", err)
	}

	var loaded Params
	if err = json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Failed to unmarshal: %+v", err)
	}

	if !reflect.DeepEqual(p, loaded) {
		t.Errorf("Params changed.\nexpected: %+v\nreceived: %+v", p, loaded)
	}
}
