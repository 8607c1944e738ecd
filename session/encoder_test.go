package session

import (
	"errors"
	"math"
	"testing"
)

func TestDecodeProfileNullAndEmpty(t *testing.T) {
	for _, in := range []string{"", "  ", "null", " null\n"} {
		p, err := DecodeProfile([]byte(in))
		if err != nil || p != nil {
			t.Fatalf("DecodeProfile(%q) = %v, %v; want nil, nil", in, p, err)
		}
	}
}

func TestDecodeProfileRejectsNonObjects(t *testing.T) {
	for _, in := range []string{"[]", "true", `"x"`, "{", "{}}"} {
		if _, err := DecodeProfile([]byte(in)); !errors.Is(err, ErrProfileMalformed) {
			t.Fatalf("DecodeProfile(%q): expected ErrProfileMalformed, got %v", in, err)
		}
	}
}

func TestEncodeProfile(t *testing.T) {
	data, err := EncodeProfile(nil)
	if err != nil || string(data) != "null" {
		t.Fatalf("nil profile encoded as %q, %v", data, err)
	}

	data, err = EncodeProfile(Profile{})
	if err != nil || string(data) != "{}" {
		t.Fatalf("empty profile encoded as %q, %v", data, err)
	}

	if _, err := EncodeProfile(Profile{"bad": math.Inf(1)}); !errors.Is(err, ErrProfileEncode) {
		t.Fatalf("expected ErrProfileEncode, got %v", err)
	}
}

func TestProfileRoleRequiresNonEmptyString(t *testing.T) {
	cases := []struct {
		profile Profile
		role    string
		ok      bool
	}{
		{nil, "", false},
		{Profile{}, "", false},
		{Profile{"role": ""}, "", false},
		{Profile{"role": 7.0}, "", false},
		{Profile{"role": []any{"ADMIN"}}, "", false},
		{Profile{"role": "ADMIN"}, "ADMIN", true},
	}
	for _, tc := range cases {
		role, ok := tc.profile.Role()
		if role != tc.role || ok != tc.ok {
			t.Fatalf("Role(%v) = %q,%v; want %q,%v", tc.profile, role, ok, tc.role, tc.ok)
		}
	}
}

// FuzzDecodeProfileErrorClass checks that arbitrary stored bytes never panic and that a
// successful decode always re-encodes.
func FuzzDecodeProfileErrorClass(f *testing.F) {
	f.Add([]byte(`{"role":"ADMIN","id":"u-1"}`))
	f.Add([]byte(`null`))
	f.Add([]byte{})
	f.Add([]byte(`{"nested":{"a":[1,2,{"b":null}]}}`))
	f.Add([]byte(`{"role":`))
	f.Add([]byte{0xff, 0xfe})

	f.Fuzz(func(t *testing.T, data []byte) {
		p, err := DecodeProfile(data)
		if err != nil {
			if !errors.Is(err, ErrProfileMalformed) {
				t.Fatalf("unexpected error class: %v", err)
			}
			return
		}
		if _, err := EncodeProfile(p.Clone()); err != nil {
			t.Fatalf("re-encode decoded profile: %v", err)
		}
	})
}
