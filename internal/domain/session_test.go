package domain

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestSessionStatePersistence(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0).UTC()
	tests := []struct {
		name  string
		state State
	}{
		{"idle", Idle{}},
		{"collecting", Collecting{Draft: Draft{VehicleAge: Int(5), City: "Kranj"}, Pending: SlotHorsepower}},
		{"awaiting comparison", AwaitingComparison{Options: []Coverage{CoveragePartial, CoverageFull}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := NewSession("k", now)
			s.State = tt.state
			s.Compared = s.Compared.Add(CoverageBasic)

			data, err := json.Marshal(s)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			if !strings.Contains(string(data), `"kind":"`+string(tt.state.Kind())+`"`) {
				t.Fatalf("missing discriminator in %s", data)
			}
			var got Session
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !reflect.DeepEqual(got.State, tt.state) {
				t.Fatalf("state = %#v, want %#v", got.State, tt.state)
			}
			if !got.Compared.Has(CoverageBasic) || got.Compared.Len() != 1 {
				t.Fatalf("compared = %v", got.Compared.Tiers())
			}
		})
	}
}

func TestSessionRejectsBadState(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{
		`{"key":"k","state":{"kind":"haggling"}}`,
		`{"key":"k","state":{"kind":"awaiting_comparison"}}`,
		`{"key":"k","state":{"kind":"idle"},"compared":["gold"]}`,
	} {
		var s Session
		if err := json.Unmarshal([]byte(raw), &s); err == nil {
			t.Errorf("expected error for %s", raw)
		}
	}
}

func TestSessionCloneIsIndependent(t *testing.T) {
	t.Parallel()

	s := NewSession("k", time.Now())
	s.State = Collecting{Draft: Draft{VehicleAge: Int(3)}}
	s.LastVehicle = &Vehicle{Age: 3, Horsepower: 90, City: "Celje"}
	s.Append(RoleUser, "zdravo", time.Now())

	c := s.Clone()
	*c.State.(Collecting).Draft.VehicleAge = 9
	c.LastVehicle.City = "Koper"
	c.Transcript[0].Content = "changed"

	if *s.State.(Collecting).Draft.VehicleAge != 3 {
		t.Fatal("clone shares the draft")
	}
	if s.LastVehicle.City != "Celje" || s.Transcript[0].Content != "zdravo" {
		t.Fatal("clone shares vehicle or transcript")
	}
}

func TestSessionTranscriptCap(t *testing.T) {
	t.Parallel()

	s := NewSession("k", time.Now())
	for i := 0; i < MaxTranscript+5; i++ {
		s.Append(RoleUser, string(rune('a'+i%26)), time.Now())
	}
	if len(s.Transcript) != MaxTranscript {
		t.Fatalf("transcript length = %d", len(s.Transcript))
	}
	if got := s.History(3); len(got) != 3 || got[2] != s.Transcript[MaxTranscript-1] {
		t.Fatalf("history = %v", got)
	}
	if s.History(0) != nil {
		t.Fatal("History(0) should be empty")
	}
}

func TestForgetVehicle(t *testing.T) {
	t.Parallel()

	s := NewSession("k", time.Now())
	s.State = AwaitingComparison{Options: []Coverage{CoverageFull}}
	s.LastVehicle = &Vehicle{Age: 1, Horsepower: 100}
	s.Compared = s.Compared.Add(CoveragePartial)

	s.ForgetVehicle()
	if s.State.Kind() != KindIdle || s.LastVehicle != nil || s.Compared.Len() != 0 {
		t.Fatalf("vehicle not forgotten: %+v", s)
	}
}

func TestDraftMissing(t *testing.T) {
	t.Parallel()

	d := Draft{}
	for _, want := range []Slot{SlotVehicleAge, SlotHorsepower, SlotCoverage, SlotNone} {
		if got := d.Missing(); got != want {
			t.Fatalf("Missing() = %q, want %q", got, want)
		}
		switch want {
		case SlotVehicleAge:
			d.VehicleAge = Int(2)
		case SlotHorsepower:
			d.Horsepower = Int(80)
		case SlotCoverage:
			d.Coverage = CoverageBasic
		}
	}
}
