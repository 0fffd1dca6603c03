package engine

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

const contactTimeLayout = "2006-01-02 15:04"

// Contactable window in local wall-clock hours.
const (
	windowOpenHour  = 6
	windowCloseHour = 20
)

var contactTimePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}$`)

// Assessment is a validated, repaired scoring response ready to persist.
type Assessment struct {
	Score             int
	Tier              string
	Reason            string
	BestContactTime   time.Time
	SuggestedActions  []string
	TextMessagePoints TextMessagePoints
	CallTalkingPoints CallTalkingPoints
}

// ValidateAndRepair checks a raw model response against the hard contract
// and repairs the soft parts. Hard failures (missing or out-of-range score,
// empty reason, malformed contact time, wrong action count) return
// ErrMalformedResponse; the caller retries rather than clamping. Soft
// failures (missing or misshapen message points) are defaulted per field.
func ValidateAndRepair(raw []byte, now time.Time, loc *time.Location) (Assessment, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Assessment{}, fmt.Errorf("%w: not a JSON object: %v", ErrMalformedResponse, err)
	}

	score, err := requireScore(fields["score"])
	if err != nil {
		return Assessment{}, err
	}

	reason, err := requireNonEmptyString(fields["reason"], "reason")
	if err != nil {
		return Assessment{}, err
	}

	contactTime, err := requireContactTime(fields["bestContactTime"], loc)
	if err != nil {
		return Assessment{}, err
	}

	actions, err := requireActions(fields["suggestedActions"])
	if err != nil {
		return Assessment{}, err
	}

	repaired := repairContactTime(contactTime, now.In(loc), loc)
	repaired = clampToWindow(repaired, loc)

	return Assessment{
		Score:             score,
		Tier:              TierForScore(score),
		Reason:            reason,
		BestContactTime:   repaired,
		SuggestedActions:  actions,
		TextMessagePoints: decodeTextMessagePoints(fields["textMessagePoints"]),
		CallTalkingPoints: decodeCallTalkingPoints(fields["callTalkingPoints"]),
	}, nil
}

func requireScore(raw json.RawMessage) (int, error) {
	if raw == nil {
		return 0, fmt.Errorf("%w: missing score", ErrMalformedResponse)
	}
	var score float64
	if err := json.Unmarshal(raw, &score); err != nil {
		return 0, fmt.Errorf("%w: score is not a number", ErrMalformedResponse)
	}
	if math.IsNaN(score) || score < 0 || score > 100 {
		return 0, fmt.Errorf("%w: score %v out of range", ErrMalformedResponse, score)
	}
	return int(math.Round(score)), nil
}

func requireNonEmptyString(raw json.RawMessage, field string) (string, error) {
	if raw == nil {
		return "", fmt.Errorf("%w: missing %s", ErrMalformedResponse, field)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("%w: %s is not a string", ErrMalformedResponse, field)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: empty %s", ErrMalformedResponse, field)
	}
	return s, nil
}

func requireContactTime(raw json.RawMessage, loc *time.Location) (time.Time, error) {
	s, err := requireNonEmptyString(raw, "bestContactTime")
	if err != nil {
		return time.Time{}, err
	}
	if !contactTimePattern.MatchString(s) {
		return time.Time{}, fmt.Errorf("%w: bestContactTime %q does not match YYYY-MM-DD HH:mm", ErrMalformedResponse, s)
	}
	t, err := time.ParseInLocation(contactTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bestContactTime %q is not a valid timestamp", ErrMalformedResponse, s)
	}
	return t, nil
}

func requireActions(raw json.RawMessage) ([]string, error) {
	if raw == nil {
		return nil, fmt.Errorf("%w: missing suggestedActions", ErrMalformedResponse)
	}
	var actions []string
	if err := json.Unmarshal(raw, &actions); err != nil {
		return nil, fmt.Errorf("%w: suggestedActions is not a string array", ErrMalformedResponse)
	}
	if len(actions) < 3 || len(actions) > 5 {
		return nil, fmt.Errorf("%w: suggestedActions has %d entries, want 3-5", ErrMalformedResponse, len(actions))
	}
	for _, a := range actions {
		if strings.TrimSpace(a) == "" {
			return nil, fmt.Errorf("%w: blank entry in suggestedActions", ErrMalformedResponse)
		}
	}
	return actions, nil
}

// repairContactTime pushes a past or too-soon contact time forward. The
// floor is now plus two hours; anything at or before the floor becomes the
// next whole hour on or after it, snapped into the contactable window.
// Times already past the floor are kept. The caller re-applies the window
// clamp afterwards as a safety net; both checks stay in place.
func repairContactTime(t, now time.Time, loc *time.Location) time.Time {
	minFuture := now.Add(2 * time.Hour)
	if t.After(minFuture) {
		return t
	}
	return clampToWindow(ceilToHour(minFuture, loc), loc)
}

// ceilToHour rounds up to the next whole wall-clock hour; an exact hour is
// returned unchanged. Built from components because Truncate works on
// absolute time and misbehaves in zones with a non-whole-hour offset.
func ceilToHour(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	top := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, loc)
	if top.Equal(t) {
		return top
	}
	return top.Add(time.Hour)
}

// clampToWindow moves a contact time into the 06:00-20:00 window. Before
// opening it snaps to 06:00 the same day; at or after close it snaps to
// 06:00 the next day.
func clampToWindow(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	switch {
	case t.Hour() < windowOpenHour:
		return time.Date(t.Year(), t.Month(), t.Day(), windowOpenHour, 0, 0, 0, loc)
	case t.Hour() >= windowCloseHour:
		next := t.AddDate(0, 0, 1)
		return time.Date(next.Year(), next.Month(), next.Day(), windowOpenHour, 0, 0, 0, loc)
	default:
		return t
	}
}

func decodeTextMessagePoints(raw json.RawMessage) TextMessagePoints {
	points := TextMessagePoints{
		KeyPoints:       []string{},
		AvoidMentioning: []string{},
	}
	if raw == nil {
		return points
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return points
	}
	decodeStringSlice(fields["keyPoints"], &points.KeyPoints)
	decodeString(fields["tone"], &points.Tone)
	decodeStringSlice(fields["avoidMentioning"], &points.AvoidMentioning)
	decodeString(fields["closing"], &points.Closing)
	return points
}

func decodeCallTalkingPoints(raw json.RawMessage) CallTalkingPoints {
	points := CallTalkingPoints{
		KeyTopics:         []string{},
		ObjectionHandling: []string{},
	}
	if raw == nil {
		return points
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return points
	}
	decodeString(fields["opening"], &points.Opening)
	decodeStringSlice(fields["keyTopics"], &points.KeyTopics)
	decodeStringSlice(fields["objectionHandling"], &points.ObjectionHandling)
	decodeString(fields["closing"], &points.Closing)
	return points
}

// decodeString leaves dst untouched when raw is absent or the wrong type.
func decodeString(raw json.RawMessage, dst *string) {
	if raw == nil {
		return
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		*dst = s
	}
}

func decodeStringSlice(raw json.RawMessage, dst *[]string) {
	if raw == nil {
		return
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return
	}
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			cleaned = append(cleaned, v)
		}
	}
	*dst = cleaned
}
