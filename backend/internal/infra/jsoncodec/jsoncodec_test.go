package jsoncodec

import "testing"

func TestMarshalSingleKeyObject(t *testing.T) {
	data, err := Marshal(map[string]any{"lot_number": 42})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"lot_number":42}` {
		t.Fatalf("unexpected payload: %s", data)
	}

	var decoded map[string]int
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["lot_number"] != 42 {
		t.Fatalf("unexpected decoded value: %v", decoded)
	}
}

func TestUnmarshalRejectsGarbage(t *testing.T) {
	var decoded map[string]any
	if err := Unmarshal([]byte("{lot"), &decoded); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}
