package flagon

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/pflag"
)

func TestIntDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
	}{
		{"positive", "123", 123, false},
		{"negative", "-456", -456, false},
		{"zero", "0", 0, false},
		{"invalid", "abc", 0, true},
		{"float", "1.5", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Int().Decode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && v != tt.want {
				t.Errorf("value = %d, want %d", v, tt.want)
			}
		})
	}
}

func TestBoolDecode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    bool
		wantErr bool
	}{
		{"true", "true", true, false},
		{"false", "false", false, false},
		{"1", "1", true, false},
		{"0", "0", false, false},
		{"yes", "yes", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Bool().Decode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && v != tt.want {
				t.Errorf("value = %v, want %v", v, tt.want)
			}
		})
	}
}

func TestDurationDecode(t *testing.T) {
	v, err := Duration().Decode("1h30m")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if v != 90*time.Minute {
		t.Errorf("value = %v, want 90m", v)
	}
	if _, err := Duration().Decode("abc"); err == nil {
		t.Error("Decode(abc) should fail")
	}
}

func TestEnumDecode(t *testing.T) {
	at := Enum("debug", "info", "warn")

	if _, err := at.Decode("trace"); err == nil {
		t.Error("Decode(trace) should fail")
	}
	v, err := at.Decode("info")
	if err != nil || v != "info" {
		t.Errorf("Decode(info) = %q, %v", v, err)
	}

	got := at.complete(nil, "de")
	if diff := cmp.Diff([]string{"debug"}, got); diff != "" {
		t.Errorf("complete mismatch (-want +got):\n%s", diff)
	}
}

func TestHostPortDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantHost string
		wantPort string
		wantErr  bool
	}{
		{"basic", "localhost:8080", "localhost", "8080", false},
		{"ipv6", "[::1]:8080", "::1", "8080", false},
		{"no port", "localhost", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hp, err := HostPortArg().Decode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && (hp.Host != tt.wantHost || hp.Port != tt.wantPort) {
				t.Errorf("Decode() = %+v, want %s %s", hp, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestPflagArg(t *testing.T) {
	at := PflagArg(func() pflag.Value {
		var ip pflag.Value = newTestValue()
		return ip
	})
	if at.Name() != "testval" {
		t.Errorf("Name() = %q, want testval", at.Name())
	}
	v, err := at.Decode("hello")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if v.String() != "hello" {
		t.Errorf("String() = %q, want hello", v.String())
	}
}

type testValue struct{ s string }

func newTestValue() *testValue { return &testValue{} }

func (v *testValue) Set(s string) error { v.s = s; return nil }
func (v *testValue) String() string     { return v.s }
func (v *testValue) Type() string       { return "testval" }

func TestContextKeyRegistry(t *testing.T) {
	key := NewKey[int]("count")
	other := NewKey[int]("count") // same name, distinct identity

	cc := newCompleteContext()
	cc.put(key, 7)

	if v, ok := KeyValue(cc, key); !ok || v != 7 {
		t.Errorf("KeyValue = %d, %v; want 7, true", v, ok)
	}
	if _, ok := KeyValue(cc, other); ok {
		t.Error("distinct key with the same name should not resolve")
	}
	if _, ok := KeyValue[int](nil, key); ok {
		t.Error("nil context should not resolve")
	}
}

func TestArgTypeRegisterPublishesKey(t *testing.T) {
	key := NewKey[int]("n")
	at := Int().WithKey(key)

	cc := newCompleteContext()
	at.core().register(cc, "42")
	if v, ok := KeyValue(cc, key); !ok || v != 42 {
		t.Errorf("KeyValue = %d, %v; want 42, true", v, ok)
	}

	// A failed decode publishes nothing.
	cc2 := newCompleteContext()
	at.core().register(cc2, "abc")
	if _, ok := KeyValue(cc2, key); ok {
		t.Error("failed decode should not publish")
	}
}
