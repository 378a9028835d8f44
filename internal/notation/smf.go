package notation

import (
	"bytes"
	"fmt"
	"math"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/resonata/resonata-api/internal/models"
	"github.com/resonata/resonata-api/internal/theory"
)

// TicksPerBeat is the file resolution (ticks per quarter note)
const TicksPerBeat = 480

// Track names written into the file
const (
	RightHandTrack = "Right Hand"
	LeftHandTrack  = "Left Hand"
)

const (
	pianoChannel = 0
	grandPiano   = 0
)

type timed struct {
	tick  uint32
	order int // note-offs sort ahead of note-ons on the same tick
	msg   []byte
}

// Encode renders a score as a format 1 Standard MIDI File: a conductor
// track followed by one track per hand.
func Encode(score *models.Score) ([]byte, error) {
	if score == nil || score.TempoBPM <= 0 {
		return nil, fmt.Errorf("encode: score needs a positive tempo")
	}
	key, err := theory.ParseKey(score.Key)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	sf, minor := key.Signature()
	num, flat := sf, false
	if sf < 0 {
		num, flat = -sf, true
	}

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(TicksPerBeat)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTrackSequenceName(score.Title))
	conductor.Add(0, smf.MetaTempo(float64(score.TempoBPM)))
	conductor.Add(0, smf.MetaMeter(models.BeatsPerMeasure, 4))
	conductor.Add(0, smf.MetaKey(uint8(key.Tonic), !minor, uint8(num), flat))
	conductor.Close(ticks(score.TotalBeats))
	if err := s.Add(conductor); err != nil {
		return nil, fmt.Errorf("encode conductor track: %w", err)
	}

	var right, left []timed
	for _, sec := range score.Sections {
		for _, n := range sec.RightHand {
			right = append(right, noteEvents(n.MidiNoteNumber, n.Velocity, n.StartBeats, n.DurationBeats)...)
		}
		for _, c := range sec.LeftHand {
			for _, p := range c.Voicing {
				left = append(left, noteEvents(p, c.Velocity, c.StartBeats, c.DurationBeats)...)
			}
		}
	}

	for _, part := range []struct {
		name   string
		events []timed
	}{{RightHandTrack, right}, {LeftHandTrack, left}} {
		tr := buildTrack(part.name, part.events, ticks(score.TotalBeats))
		if err := s.Add(tr); err != nil {
			return nil, fmt.Errorf("encode %s track: %w", part.name, err)
		}
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write midi: %w", err)
	}
	return buf.Bytes(), nil
}

func noteEvents(pitch, velocity int, start, dur float64) []timed {
	if velocity <= 0 {
		velocity = 64
	}
	on := ticks(start)
	off := ticks(start + dur)
	if off <= on {
		off = on + 1
	}
	return []timed{
		{tick: on, order: 1, msg: midi.NoteOn(pianoChannel, uint8(pitch), uint8(velocity))},
		{tick: off, order: 0, msg: midi.NoteOff(pianoChannel, uint8(pitch))},
	}
}

func buildTrack(name string, events []timed, endTick uint32) smf.Track {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].tick != events[j].tick {
			return events[i].tick < events[j].tick
		}
		return events[i].order < events[j].order
	})

	var tr smf.Track
	tr.Add(0, smf.MetaTrackSequenceName(name))
	tr.Add(0, midi.ProgramChange(pianoChannel, grandPiano))

	var last uint32
	for _, ev := range events {
		tr.Add(ev.tick-last, ev.msg)
		last = ev.tick
	}
	var tail uint32
	if endTick > last {
		tail = endTick - last
	}
	tr.Close(tail)
	return tr
}

func ticks(beats float64) uint32 {
	if beats <= 0 {
		return 0
	}
	return uint32(math.Round(beats * TicksPerBeat))
}
