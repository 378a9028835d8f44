package notation

import (
	"bytes"
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/resonata/resonata-api/internal/models"
)

// Decoded is the content of a file written by Encode
type Decoded struct {
	Title     string
	TempoBPM  float64
	TotalBeat float64
	RightHand []models.NoteEvent
	LeftHand  []models.ChordEvent
}

type pending struct {
	tick     uint64
	velocity uint8
}

type sounding struct {
	pitch    int
	velocity int
	start    uint64
	end      uint64
}

// Decode reads a Standard MIDI File produced by Encode back into events
func Decode(data []byte) (*Decoded, error) {
	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read midi: %w", err)
	}
	mt, ok := s.TimeFormat.(smf.MetricTicks)
	if !ok {
		return nil, fmt.Errorf("read midi: unsupported time format %v", s.TimeFormat)
	}
	resolution := float64(uint16(mt))

	out := &Decoded{}
	var endTick uint64
	for i, tr := range s.Tracks {
		name, notes, trackEnd := readTrack(tr, out)
		if trackEnd > endTick {
			endTick = trackEnd
		}
		if i == 0 {
			out.Title = name
			continue
		}
		switch name {
		case RightHandTrack:
			for _, n := range notes {
				out.RightHand = append(out.RightHand, models.NoteEvent{
					MidiNoteNumber: n.pitch,
					Velocity:       n.velocity,
					StartBeats:     float64(n.start) / resolution,
					DurationBeats:  float64(n.end-n.start) / resolution,
					Hand:           models.HandRight,
				})
			}
		case LeftHandTrack:
			out.LeftHand = groupChords(notes, resolution)
		}
	}
	out.TotalBeat = float64(endTick) / resolution
	return out, nil
}

func readTrack(tr smf.Track, out *Decoded) (string, []sounding, uint64) {
	var (
		name  string
		abs   uint64
		open  = map[uint8]pending{}
		notes []sounding
	)
	for _, ev := range tr {
		abs += uint64(ev.Delta)
		msg := ev.Message

		var bpm float64
		var text string
		var ch, key, vel uint8
		switch {
		case msg.GetMetaTempo(&bpm):
			out.TempoBPM = bpm
		case msg.GetMetaTrackName(&text):
			name = text
		case midi.Message(msg).GetNoteStart(&ch, &key, &vel):
			open[key] = pending{tick: abs, velocity: vel}
		case midi.Message(msg).GetNoteEnd(&ch, &key):
			if p, ok := open[key]; ok {
				notes = append(notes, sounding{pitch: int(key), velocity: int(p.velocity), start: p.tick, end: abs})
				delete(open, key)
			}
		}
	}
	sortSounding(notes)
	return name, notes, abs
}

// groupChords merges notes sharing onset and release into one event
func groupChords(notes []sounding, resolution float64) []models.ChordEvent {
	var chords []models.ChordEvent
	for _, n := range notes {
		start := float64(n.start) / resolution
		dur := float64(n.end-n.start) / resolution
		if k := len(chords) - 1; k >= 0 && chords[k].StartBeats == start && chords[k].DurationBeats == dur {
			chords[k].Voicing = append(chords[k].Voicing, n.pitch)
			continue
		}
		chords = append(chords, models.ChordEvent{
			StartBeats:    start,
			DurationBeats: dur,
			Voicing:       []int{n.pitch},
			Velocity:      n.velocity,
		})
	}
	return chords
}

// sortSounding orders notes by onset, then pitch
func sortSounding(notes []sounding) {
	sort.SliceStable(notes, func(i, j int) bool {
		if notes[i].start != notes[j].start {
			return notes[i].start < notes[j].start
		}
		return notes[i].pitch < notes[j].pitch
	})
}
