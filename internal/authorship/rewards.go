package authorship

import (
	"github.com/rs/zerolog"

	"github.com/eigerco/mulberry/internal/digest"
)

// RewardSink receives authorship events at block finalization. Sinks must be
// infallible: finalization cannot recover, so a sink that wants to skip an
// event ignores it internally instead of failing.
type RewardSink interface {
	NoteAuthor(author digest.AuthorID)
	NoteUncle(author digest.AuthorID, generation uint64)
}

// LogSink emits each authorship event as a structured log line.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) NoteAuthor(author digest.AuthorID) {
	s.Logger.Info().Str("author", author.Hex()).Msg("block author credited")
}

func (s LogSink) NoteUncle(author digest.AuthorID, generation uint64) {
	s.Logger.Info().
		Str("author", author.Hex()).
		Uint64("generation", generation).
		Msg("uncle author credited")
}

// TallySink accumulates per-author credit counts, the minimal shape of a
// downstream reward consumer.
type TallySink struct {
	authored map[digest.AuthorID]uint64
	uncled   map[digest.AuthorID]uint64
}

func NewTallySink() *TallySink {
	return &TallySink{
		authored: make(map[digest.AuthorID]uint64),
		uncled:   make(map[digest.AuthorID]uint64),
	}
}

func (s *TallySink) NoteAuthor(author digest.AuthorID) {
	s.authored[author]++
}

func (s *TallySink) NoteUncle(author digest.AuthorID, generation uint64) {
	s.uncled[author]++
}

// Credit returns how many blocks and uncles have been credited to author.
func (s *TallySink) Credit(author digest.AuthorID) (blocks, uncles uint64) {
	return s.authored[author], s.uncled[author]
}
