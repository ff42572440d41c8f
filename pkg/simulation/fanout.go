package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/axwise-ai/axpersona/pkg/cache"
	"github.com/axwise-ai/axpersona/pkg/llm"
	"github.com/axwise-ai/axpersona/pkg/models"
)

// Fanout concurrency bounds.
const (
	DefaultMaxConcurrent = 12
	MinMaxConcurrent     = 1
	MaxMaxConcurrent     = 32

	interviewAttempts  = 3
	interviewBaseDelay = time.Second
)

// ProgressFunc receives advisory progress updates after each interview
// terminal event. Invocations may interleave arbitrarily across tasks.
type ProgressFunc func(message string, completed, total, failed int)

// Fanout runs one interview per persona under a counting semaphore. The
// output list is ordered by completion time, not by persona order.
type Fanout struct {
	gateway       llm.Gateway
	cache         *cache.InterviewCache
	maxConcurrent int

	// durationJitter returns the random minutes term added to derived
	// interview durations; injectable for deterministic tests.
	durationJitter func() int
}

// NewFanout creates a Fanout with the given concurrency bound, clamped to
// [MinMaxConcurrent, MaxMaxConcurrent]. Zero selects the default.
func NewFanout(gateway llm.Gateway, ivCache *cache.InterviewCache, maxConcurrent int) *Fanout {
	if maxConcurrent == 0 {
		maxConcurrent = DefaultMaxConcurrent
	}
	if maxConcurrent < MinMaxConcurrent {
		maxConcurrent = MinMaxConcurrent
	}
	if maxConcurrent > MaxMaxConcurrent {
		maxConcurrent = MaxMaxConcurrent
	}
	return &Fanout{
		gateway:        gateway,
		cache:          ivCache,
		maxConcurrent:  maxConcurrent,
		durationJitter: func() int { return rand.IntN(16) - 5 }, // U[-5,10]
	}
}

// SimulateAll interviews every persona that maps to a stakeholder. Failed
// interviews are logged, counted, and excluded; the fanout fails only when
// zero interviews complete. Cancellation stops scheduling and surfaces a
// cancelled error.
func (f *Fanout) SimulateAll(ctx context.Context, personas []models.Persona, buckets models.StakeholderBuckets, brief models.BusinessContext, cfg models.SimulationConfig, progress ProgressFunc) ([]models.Interview, error) {
	byName := make(map[string]models.Stakeholder)
	for _, s := range buckets.All() {
		byName[s.Name] = s
	}

	type pair struct {
		persona     models.Persona
		stakeholder models.Stakeholder
	}
	var valid []pair
	for _, p := range personas {
		s, ok := byName[p.StakeholderType]
		if !ok {
			slog.Warn("No stakeholder found for persona",
				"persona", p.Name, "stakeholder_type", p.StakeholderType)
			continue
		}
		valid = append(valid, pair{persona: p, stakeholder: s})
	}
	if len(valid) == 0 {
		slog.Warn("No valid personas found for simulation")
		return nil, nil
	}

	sem := semaphore.NewWeighted(int64(f.maxConcurrent))

	var (
		mu        sync.Mutex
		results   []models.Interview
		completed int
		failed    int
		wg        sync.WaitGroup
	)
	total := len(valid)

	report := func(message string) {
		if progress == nil {
			return
		}
		progress(message, completed, total, failed)
	}

	for _, item := range valid {
		wg.Add(1)
		go func(p models.Persona, s models.Stakeholder) {
			defer wg.Done()

			if err := sem.Acquire(ctx, 1); err != nil {
				mu.Lock()
				failed++
				report(fmt.Sprintf("Cancelled: %s", p.Name))
				mu.Unlock()
				return
			}
			interview, err := f.simulateOne(ctx, p, s, brief, cfg)
			sem.Release(1)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				slog.Error("Interview simulation failed",
					"persona", p.Name, "stakeholder", p.StakeholderType, "error", err)
				report(fmt.Sprintf("Failed: %s", p.Name))
				return
			}
			results = append(results, *interview)
			completed++
			report(fmt.Sprintf("Completed interview with %s", p.Name))
		}(item.persona, item.stakeholder)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, &llm.Error{Kind: llm.KindCancelled, Task: llm.TaskInterviewSimulation, Err: err}
	}
	if len(results) == 0 {
		return nil, fmt.Errorf("all %d interviews failed", total)
	}

	slog.Info("Interview fanout finished", "successful", len(results), "failed", failed)
	return results, nil
}

// simulateOne runs the per-interview protocol: consult the cache, invoke
// the gateway with up to three attempts (exponential backoff plus jitter,
// temperature forced to 0.0 after malformed output), stamp derived fields,
// and store the result.
func (f *Fanout) simulateOne(ctx context.Context, persona models.Persona, stakeholder models.Stakeholder, brief models.BusinessContext, cfg models.SimulationConfig) (*models.Interview, error) {
	key := cache.Fingerprint(persona.ID, stakeholder.ID, brief.BusinessIdea, cfg.Temperature, cfg.ResponseStyle)
	if cached, ok := f.cache.Get(key); ok {
		slog.Debug("Using cached interview", "persona", persona.Name)
		return &cached, nil
	}

	prompt := interviewPrompt(persona, stakeholder, brief, cfg)
	temperature := cfg.Temperature

	var lastErr error
	for attempt := 0; attempt < interviewAttempts; attempt++ {
		var interview models.Interview
		opts := llm.DefaultOptions().WithTemperature(temperature).WithMaxRetries(0)
		err := f.gateway.Invoke(ctx, llm.TaskInterviewSimulation, prompt, opts, &interview)
		if err == nil {
			interview.PersonID = persona.ID
			interview.StakeholderType = persona.StakeholderType
			interview.DurationMinutes = f.deriveDuration(interview.Responses)
			f.cache.Put(key, interview)
			return &interview, nil
		}

		if llm.IsCancelled(err) {
			return nil, err
		}
		lastErr = err
		if llm.IsMalformed(err) {
			// Force deterministic output on the next attempt.
			temperature = 0.0
		}
		if attempt == interviewAttempts-1 {
			break
		}

		delay := interviewBaseDelay*(1<<attempt) + time.Duration(rand.Float64()*float64(time.Second))
		slog.Warn("Interview attempt failed, retrying",
			"persona", persona.Name, "attempt", attempt+1, "delay", delay, "error", err)
		select {
		case <-ctx.Done():
			return nil, &llm.Error{Kind: llm.KindCancelled, Task: llm.TaskInterviewSimulation, Err: ctx.Err()}
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("interview for %s failed after %d attempts: %w", persona.Name, interviewAttempts, lastErr)
}

// deriveDuration estimates interview minutes: two per question, plus a
// length bucket per response, plus a random term, floored at 10.
func (f *Fanout) deriveDuration(responses []models.InterviewResponse) int {
	minutes := len(responses) * 2
	for _, r := range responses {
		switch words := len(strings.Fields(r.Response)); {
		case words > 100:
			minutes += 3
		case words > 50:
			minutes += 2
		default:
			minutes++
		}
	}
	minutes += f.durationJitter()
	if minutes < 10 {
		minutes = 10
	}
	return minutes
}

func interviewPrompt(persona models.Persona, stakeholder models.Stakeholder, brief models.BusinessContext, cfg models.SimulationConfig) string {
	var sb strings.Builder
	sb.WriteString("Simulate a customer research interview with the following persona:\n\n")
	sb.WriteString("PERSONA DETAILS:\n")
	fmt.Fprintf(&sb, "- Name: %s\n", persona.Name)
	fmt.Fprintf(&sb, "- Age: %d\n", persona.Age)
	fmt.Fprintf(&sb, "- Background: %s\n", persona.Background)
	fmt.Fprintf(&sb, "- Motivations: %s\n", strings.Join(persona.Motivations, ", "))
	fmt.Fprintf(&sb, "- Pain Points: %s\n", strings.Join(persona.PainPoints, ", "))
	fmt.Fprintf(&sb, "- Communication Style: %s\n", persona.CommunicationStyle)
	sb.WriteString("\nBUSINESS CONTEXT:\n")
	fmt.Fprintf(&sb, "- Business Idea: %s\n", brief.BusinessIdea)
	fmt.Fprintf(&sb, "- Target Customer: %s\n", brief.TargetCustomer)
	fmt.Fprintf(&sb, "- Problem: %s\n", brief.Problem)
	sb.WriteString("\nINTERVIEW QUESTIONS:\n")
	for i, q := range stakeholder.Questions {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, q)
	}
	fmt.Fprintf(&sb, "\nSIMULATION STYLE: %s\n", cfg.ResponseStyle)
	sb.WriteString(`
Instructions:
1. Answer each question as this persona would, staying completely in character
2. Use their communication style and background to inform responses
3. Include natural human elements like personal examples, hesitations, and tangents
4. Provide responses that vary in length naturally

For each response, also identify the sentiment (positive, negative, neutral, mixed), key insights, and any natural follow-up questions.

Return a JSON object:
{"responses": [{"question": "...", "response": "...", "sentiment": "...", "key_insights": ["..."], "follow_up_questions": ["..."]}],
 "overall_sentiment": "...", "key_themes": ["..."]}`)
	return sb.String()
}
