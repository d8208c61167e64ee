package replay

import (
	"github.com/CosmWasm/tinyjson/jwriter"
)

// Report is the outcome of one scenario run.
type Report struct {
	Scenario   string
	StartedAt  int64
	FinishedAt int64
	Failures   int
	Steps      []StepResult
	Projects   []ProjectSnapshot
	Wallets    []WalletSnapshot
}

// StepResult records one step. OK is false when the outcome did not match the
// expectation of the step.
type StepResult struct {
	Index     int
	At        int64
	Action    string
	As        string
	Summary   string
	Error     string
	Succeeded bool
	OK        bool
	Events    []string
}

type ProjectSnapshot struct {
	ID       uint64
	Owner    string
	Terminal string
	Balance  string
	Overflow string
	Supply   string
	Reserved string
	Cycle    *CycleSnapshot
}

type CycleSnapshot struct {
	ID       uint64
	Number   uint64
	Start    int64
	Duration int64
	Target   string
	Tapped   string
	Weight   string
	Currency string
}

type WalletSnapshot struct {
	Address  string
	Currency string
	Balance  string
}

// MarshalJSON writes the report with snake_case keys. Amounts stay decimal strings.
func (r *Report) MarshalJSON() ([]byte, error) {
	w := &jwriter.Writer{}
	r.encode(w)
	return w.BuildBytes()
}

func (r *Report) encode(w *jwriter.Writer) {
	w.RawByte('{')
	w.RawString(`"scenario":`)
	w.String(r.Scenario)
	w.RawString(`,"started_at":`)
	w.Int64(r.StartedAt)
	w.RawString(`,"finished_at":`)
	w.Int64(r.FinishedAt)
	w.RawString(`,"failures":`)
	w.Int64(int64(r.Failures))
	w.RawString(`,"steps":[`)
	for i := range r.Steps {
		if i > 0 {
			w.RawByte(',')
		}
		r.Steps[i].encode(w)
	}
	w.RawString(`],"projects":[`)
	for i := range r.Projects {
		if i > 0 {
			w.RawByte(',')
		}
		r.Projects[i].encode(w)
	}
	w.RawString(`],"wallets":[`)
	for i, wl := range r.Wallets {
		if i > 0 {
			w.RawByte(',')
		}
		w.RawString(`{"address":`)
		w.String(wl.Address)
		w.RawString(`,"currency":`)
		w.String(wl.Currency)
		w.RawString(`,"balance":`)
		w.String(wl.Balance)
		w.RawByte('}')
	}
	w.RawString(`]}`)
}

func (s *StepResult) encode(w *jwriter.Writer) {
	w.RawString(`{"index":`)
	w.Int64(int64(s.Index))
	w.RawString(`,"at":`)
	w.Int64(s.At)
	w.RawString(`,"action":`)
	w.String(s.Action)
	if s.As != "" {
		w.RawString(`,"as":`)
		w.String(s.As)
	}
	w.RawString(`,"ok":`)
	w.Bool(s.OK)
	w.RawString(`,"succeeded":`)
	w.Bool(s.Succeeded)
	if s.Summary != "" {
		w.RawString(`,"summary":`)
		w.String(s.Summary)
	}
	if s.Error != "" {
		w.RawString(`,"error":`)
		w.String(s.Error)
	}
	if len(s.Events) > 0 {
		w.RawString(`,"events":[`)
		for i, ev := range s.Events {
			if i > 0 {
				w.RawByte(',')
			}
			w.String(ev)
		}
		w.RawByte(']')
	}
	w.RawByte('}')
}

func (p *ProjectSnapshot) encode(w *jwriter.Writer) {
	w.RawString(`{"id":`)
	w.Uint64(p.ID)
	w.RawString(`,"owner":`)
	w.String(p.Owner)
	w.RawString(`,"terminal":`)
	w.String(p.Terminal)
	w.RawString(`,"balance":`)
	w.String(p.Balance)
	w.RawString(`,"overflow":`)
	w.String(p.Overflow)
	w.RawString(`,"supply":`)
	w.String(p.Supply)
	w.RawString(`,"reserved":`)
	w.String(p.Reserved)
	if c := p.Cycle; c != nil {
		w.RawString(`,"cycle":{"id":`)
		w.Uint64(c.ID)
		w.RawString(`,"number":`)
		w.Uint64(c.Number)
		w.RawString(`,"start":`)
		w.Int64(c.Start)
		w.RawString(`,"duration":`)
		w.Int64(c.Duration)
		w.RawString(`,"target":`)
		w.String(c.Target)
		w.RawString(`,"tapped":`)
		w.String(c.Tapped)
		w.RawString(`,"weight":`)
		w.String(c.Weight)
		w.RawString(`,"currency":`)
		w.String(c.Currency)
		w.RawByte('}')
	}
	w.RawByte('}')
}
