package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/typerace/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Corpus tests

func (s *StorageSuite) TestGetCorpusBeforeSave() {
	_, err := s.storage.GetCorpus(s.ctx)
	s.ErrorIs(err, model.ErrCorpusEmpty)
}

func (s *StorageSuite) TestSaveAndGetCorpus() {
	err := s.storage.SaveCorpus(s.ctx, []string{"one two", "three four"})
	s.Require().NoError(err)

	corpus, err := s.storage.GetCorpus(s.ctx)
	s.Require().NoError(err)
	s.Equal([]string{"one two", "three four"}, corpus)
}

func (s *StorageSuite) TestSaveCorpusReplacesExisting() {
	_ = s.storage.SaveCorpus(s.ctx, []string{"old"})
	_ = s.storage.SaveCorpus(s.ctx, []string{"new"})

	corpus, _ := s.storage.GetCorpus(s.ctx)
	s.Equal([]string{"new"}, corpus)
}

func (s *StorageSuite) TestGetCorpusReturnsCopy() {
	_ = s.storage.SaveCorpus(s.ctx, []string{"original"})

	corpus, _ := s.storage.GetCorpus(s.ctx)
	corpus[0] = "mutated"

	again, _ := s.storage.GetCorpus(s.ctx)
	s.Equal("original", again[0])
}

// Pool tests

func (s *StorageSuite) TestPopEmptyPool() {
	_, err := s.storage.PopParagraph(s.ctx)
	s.ErrorIs(err, model.ErrPoolEmpty)
}

func (s *StorageSuite) TestPoolIsFirstInFirstOut() {
	s.Require().NoError(s.storage.PushParagraphs(s.ctx, "first", "second"))
	s.Require().NoError(s.storage.PushParagraphs(s.ctx, "third"))

	size, err := s.storage.PoolSize(s.ctx)
	s.Require().NoError(err)
	s.Equal(3, size)

	for _, want := range []string{"first", "second", "third"} {
		got, err := s.storage.PopParagraph(s.ctx)
		s.Require().NoError(err)
		s.Equal(want, got)
	}

	size, _ = s.storage.PoolSize(s.ctx)
	s.Equal(0, size)
}
