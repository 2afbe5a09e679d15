package util

import (
	"testing"

	"github.com/google/uuid"
)

func TestNewReqID_BasicProps(t *testing.T) {
	t.Parallel()

	id := NewReqID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("id %q is not a valid uuid: %v", id, err)
	}
	if id == "00000000-0000-0000-0000-000000000000" {
		t.Fatalf("id should not be the nil uuid")
	}
}

func TestNewReqID_Uniqueness_Sample(t *testing.T) {
	t.Parallel()

	const n = 256 // tamaño razonable para test; colisión extremadamente improbable
	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		id := NewReqID()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate id generated: %q", id)
		}
		seen[id] = struct{}{}
	}
}

// Extra: dos llamadas consecutivas deben diferir casi siempre.
// Si alguna vez colisionara (ultra improbable), este test fallaría junto con el de unicidad.
func TestNewReqID_TwoCallsDiffer(t *testing.T) {
	t.Parallel()

	a := NewReqID()
	b := NewReqID()
	if a == b {
		t.Fatalf("two consecutive ids are equal: %q", a)
	}
}
