package protocol_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

func TestSchemas_ValidateSamples(t *testing.T) {
	compile := func(name string) *jsonschema.Schema {
		t.Helper()
		p := filepath.Join("..", "..", "schemas", name)
		s, err := jsonschema.Compile(p)
		if err != nil {
			t.Fatalf("compile %s: %v", name, err)
		}
		return s
	}

	validate := func(s *jsonschema.Schema, v any) {
		t.Helper()
		if err := s.Validate(v); err != nil {
			t.Fatalf("validate: %v", err)
		}
	}

	helloSchema := compile("hello.schema.json")
	welcomeSchema := compile("welcome.schema.json")
	obsSchema := compile("obs.schema.json")
	cmdSchema := compile("cmd.schema.json")

	var hello any
	_ = json.Unmarshal([]byte(`{
	  "type":"HELLO",
	  "protocol_version":"1.0",
	  "client_name":"dispatch1",
	  "role":"operator",
	  "max_queue":64
	}`), &hello)
	validate(helloSchema, hello)

	var welcome any
	_ = json.Unmarshal([]byte(`{
	  "type":"WELCOME",
	  "protocol_version":"1.0",
	  "client_id":"client_1",
	  "engine_params":{
	    "agency_id":"agency_1",
	    "seed":1337,
	    "day_seconds":1,
	    "fiscal_year":2024,
	    "current_day":0
	  }
	}`), &welcome)
	validate(welcomeSchema, welcome)

	var obs any
	_ = json.Unmarshal([]byte(`{
	  "type":"OBS",
	  "protocol_version":"1.0",
	  "day":31,
	  "budget":{"fiscal_year":2024,"total_budget":1000000,"allocated_funds":100000,"available_funds":900000},
	  "assets":[{"id":1,"name":"I-35","condition":79.2,"traffic_volume":20000,"capacity":25000}],
	  "projects":[{"id":1,"name":"Upgrade I-35","project_type":"Upgrade","status":"InProgress","progress":40,"estimated_cost":100000,"allocated_funds":100000,"start_day":5,"end_day":35,"contractor_id":2,"bid_amount":97000}],
	  "notices":["Project Upgrade I-35 has been approved and allocated $100000.00."],
	  "digest":"0f1e2d3c4b5a69788796a5b4c3d2e1f00f1e2d3c4b5a69788796a5b4c3d2e1f0"
	}`), &obs)
	validate(obsSchema, obs)

	var cmd any
	_ = json.Unmarshal([]byte(`{
	  "type":"CMD",
	  "protocol_version":"1.0",
	  "id":"c1",
	  "op":"PROPOSE_PROJECT",
	  "name":"Resurface US-290",
	  "project_type":"Maintenance",
	  "asset_ids":[2],
	  "estimated_cost":75000,
	  "start_offset_days":3,
	  "duration_days":45
	}`), &cmd)
	validate(cmdSchema, cmd)
}

func TestSchemas_RejectBadSamples(t *testing.T) {
	p := filepath.Join("..", "..", "schemas", "cmd.schema.json")
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	var bad any
	_ = json.Unmarshal([]byte(`{
	  "type":"CMD",
	  "protocol_version":"1.0",
	  "id":"c2",
	  "op":"DEMOLISH_EVERYTHING"
	}`), &bad)
	if err := s.Validate(bad); err == nil {
		t.Fatal("expected unknown op to fail validation")
	}
}
