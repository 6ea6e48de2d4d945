package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"azdo-flow/internal/devops"
	"azdo-flow/internal/history"
)

// OpenRevisedDate is what Azure DevOps reports as revisedDate for the latest revision.
const OpenRevisedDate = "9999-01-01T00:00:00Z"

type GeneratorConfig struct {
	Scenario string // "mild", "rework" or "chaos"
	Count    int
	Now      time.Time
	Seed     uint64
}

// MockItem is a generated work item with its full update history.
type MockItem struct {
	ID      int                `json:"id"`
	Title   string             `json:"title"`
	Type    string             `json:"type"`
	State   string             `json:"state"`
	Created time.Time          `json:"created"`
	Updates []devops.UpdateDTO `json:"updates"`
}

// DTO returns the item as the work item endpoint reports it.
func (m MockItem) DTO() *devops.WorkItemDTO {
	return &devops.WorkItemDTO{
		ID:  m.ID,
		Rev: len(m.Updates),
		Fields: map[string]any{
			devops.FieldTitle:        m.Title,
			devops.FieldWorkItemType: m.Type,
			devops.FieldState:        m.State,
			devops.FieldCreatedDate:  m.Created.Format(time.RFC3339Nano),
		},
	}
}

type scenario struct {
	reworkProb  float64 // Code Review sends the item back to Active
	reopenProb  float64 // Resolved is reopened instead of closed
	noiseProb   float64 // an unrelated field edit is interleaved
	missingProb float64 // a state update carries no System.ChangedDate
	k, lambda   float64 // Weibull shape/scale of the Active residency in days
}

var scenarios = map[string]scenario{
	"mild":   {reworkProb: 0.1, reopenProb: 0.05, noiseProb: 0.1, k: 2.5, lambda: 3.0},
	"rework": {reworkProb: 0.5, reopenProb: 0.3, noiseProb: 0.3, k: 2.0, lambda: 2.5},
	"chaos":  {reworkProb: 0.6, reopenProb: 0.4, noiseProb: 0.5, missingProb: 0.1, k: 0.8, lambda: 4.0},
}

// Scenarios lists the supported scenario names.
func Scenarios() []string {
	return []string{"mild", "rework", "chaos"}
}

// Generate creates Count work items arriving one per day up to Now.
func Generate(cfg GeneratorConfig) ([]MockItem, error) {
	sc, ok := scenarios[cfg.Scenario]
	if !ok {
		return nil, fmt.Errorf("unknown scenario %q (want one of %v)", cfg.Scenario, Scenarios())
	}
	if cfg.Now.IsZero() {
		cfg.Now = time.Now()
	}
	cfg.Now = cfg.Now.UTC().Truncate(time.Second)
	rng := rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))

	items := make([]MockItem, 0, cfg.Count)
	// Arrivals: one per day, the last one today.
	tArrival := cfg.Now.AddDate(0, 0, -cfg.Count)
	for i := range cfg.Count {
		arrival := tArrival.AddDate(0, 0, i).Add(time.Duration(rng.IntN(8*3600)) * time.Second)
		b := &itemBuilder{
			item: MockItem{
				ID:      1000 + i,
				Title:   fmt.Sprintf("Generated task %d", i+1),
				Type:    "Task",
				Created: arrival,
			},
			now: cfg.Now,
			sc:  sc,
			rng: rng,
		}
		b.run()
		items = append(items, b.finish())
	}
	return items, nil
}

type itemBuilder struct {
	item  MockItem
	times []time.Time // when each update happened
	now   time.Time
	sc    scenario
	rng   *rand.Rand
	at    time.Time
	done  bool
}

func (b *itemBuilder) run() {
	b.at = b.item.Created
	b.enter(history.StateNew)
	b.wait(0.2 + b.rng.Float64()*2)

	for !b.done {
		b.enter(history.StateActive)
		b.wait(weibullSample(b.rng, b.sc.k, b.sc.lambda))
		b.enter(history.StateCodeReview)
		b.wait(0.1 + b.rng.Float64())
		if b.rng.Float64() < b.sc.reworkProb {
			continue
		}
		b.enter(history.StateResolved)
		b.wait(0.5 + b.rng.Float64()*3)
		if b.rng.Float64() < b.sc.reopenProb {
			continue
		}
		b.enter(history.StateClosed)
		return
	}
}

// wait advances the clock; an item whose next step would land after now stays where it is.
func (b *itemBuilder) wait(days float64) {
	if b.done {
		return
	}
	prev := b.at
	b.at = b.at.Add(time.Duration(days * 24 * float64(time.Hour))).Truncate(time.Second)
	if !b.at.Before(b.now) {
		b.done = true
		return
	}
	if b.rng.Float64() < b.sc.noiseProb {
		edit := prev.Add(b.at.Sub(prev) / 2)
		fields := map[string]devops.FieldChangeDTO{}
		fields["System.AssignedTo"] = devops.FieldChangeDTO{NewValue: fmt.Sprintf("dev%d@example.com", b.rng.IntN(5))}
		fields[devops.FieldChangedDate] = devops.FieldChangeDTO{NewValue: edit.Format(time.RFC3339Nano)}
		b.push(fields, edit)
	}
}

func (b *itemBuilder) enter(state string) {
	if b.done {
		return
	}
	fields := map[string]devops.FieldChangeDTO{
		devops.FieldState: {OldValue: nilIfEmpty(b.item.State), NewValue: state},
	}
	if len(b.item.Updates) == 0 {
		fields[devops.FieldTitle] = devops.FieldChangeDTO{NewValue: b.item.Title}
		fields[devops.FieldWorkItemType] = devops.FieldChangeDTO{NewValue: b.item.Type}
		fields[devops.FieldCreatedDate] = devops.FieldChangeDTO{NewValue: b.item.Created.Format(time.RFC3339Nano)}
	}
	if len(b.item.Updates) == 0 || b.rng.Float64() >= b.sc.missingProb {
		fields[devops.FieldChangedDate] = devops.FieldChangeDTO{NewValue: b.at.Format(time.RFC3339Nano)}
	}
	b.item.State = state
	b.push(fields, b.at)
}

func (b *itemBuilder) push(fields map[string]devops.FieldChangeDTO, at time.Time) {
	rev := len(b.item.Updates) + 1
	b.times = append(b.times, at)
	b.item.Updates = append(b.item.Updates, devops.UpdateDTO{
		ID:         rev,
		WorkItemID: b.item.ID,
		Rev:        rev,
		Fields:     fields,
	})
}

// finish fills revisedDate: each revision is superseded by the next one.
func (b *itemBuilder) finish() MockItem {
	ups := b.item.Updates
	for i := range ups {
		if i+1 < len(ups) {
			ups[i].RevisedDate = b.times[i+1].Format(time.RFC3339Nano)
		} else {
			ups[i].RevisedDate = OpenRevisedDate
		}
	}
	return b.item
}

func nilIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func weibullSample(rng *rand.Rand, k, lambda float64) float64 {
	u := rng.Float64()
	if u == 0 {
		u = 0.0001
	}
	// X = lambda * (-ln(1-u))^(1/k)
	return lambda * math.Pow(-math.Log(1.0-u), 1.0/k)
}

// Save writes the generated items as a JSON fixture file.
func Save(outDir string, items []MockItem) (string, error) {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", err
	}
	path := filepath.Join(outDir, "workitems.json")

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return path, enc.Encode(items)
}
