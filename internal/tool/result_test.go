package tool

import (
	"errors"
	"testing"
)

func TestFailure_AlwaysCarriesMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil error", err: nil, want: "unknown error"},
		{name: "empty message", err: errors.New(""), want: "unknown error"},
		{name: "message kept", err: errors.New("index offline"), want: "index offline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Failure("ipc_search", tt.err)
			if res.Status != StatusError {
				t.Errorf("Status = %q, want %q", res.Status, StatusError)
			}
			if res.Error != tt.want {
				t.Errorf("Error = %q, want %q", res.Error, tt.want)
			}
			if res.OK() {
				t.Error("OK() = true for failure")
			}
			if res.Timestamp.IsZero() {
				t.Error("Timestamp not set")
			}
		})
	}
}

func TestSuccess_HasNoError(t *testing.T) {
	res := Success("case_analysis", map[string]any{"case_type": "fraud"})
	if !res.OK() || res.Error != "" {
		t.Errorf("unexpected success result: %+v", res)
	}
}

type hit struct {
	Section string `json:"section"`
}

func TestDecodePayload(t *testing.T) {
	direct, err := DecodePayload[[]hit]([]hit{{Section: "378"}})
	if err != nil || len(direct) != 1 || direct[0].Section != "378" {
		t.Fatalf("direct decode = %v, %v", direct, err)
	}

	viaJSON, err := DecodePayload[[]hit]([]map[string]any{{"section": "379"}})
	if err != nil || len(viaJSON) != 1 || viaJSON[0].Section != "379" {
		t.Fatalf("json decode = %v, %v", viaJSON, err)
	}

	if _, err := DecodePayload[[]hit]("not a list"); err == nil {
		t.Error("expected error for wrong shape")
	}
	if _, err := DecodePayload[[]hit](nil); err == nil {
		t.Error("expected error for nil payload")
	}
}

func TestInputFromJSON(t *testing.T) {
	in, err := InputFromJSON(`{"query":"stolen phone","limit":3}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in.String("query") != "stolen phone" {
		t.Errorf("query = %q", in.String("query"))
	}
	if in.String("limit") != "" {
		t.Errorf("non-string value should read as empty, got %q", in.String("limit"))
	}

	var args struct {
		Limit int `json:"limit"`
	}
	if err := in.Decode(&args); err != nil || args.Limit != 3 {
		t.Errorf("Decode = %+v, %v", args, err)
	}

	if _, err := InputFromJSON(`[1,2]`); err == nil {
		t.Error("expected error for non-object JSON")
	}

	empty, err := InputFromJSON("")
	if err != nil || len(empty) != 0 {
		t.Errorf("empty input = %v, %v", empty, err)
	}
}
