package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	conversationsFile = "conversations.json"
	faqsFile          = "faqs.json"
)

type conversationDoc struct {
	Conversations map[string][]Turn `json:"conversations"`
}

type faqDoc struct {
	FAQs []FAQ `json:"faqs"`
}

// FileStore keeps every conversation in a single JSON document next to a
// read-only FAQ document. All access to the conversation document goes through
// mu, so concurrent appends never lose each other's turns.
type FileStore struct {
	dir               string
	conversationsPath string
	faqPath           string
	now               func() time.Time

	mu sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:               dir,
		conversationsPath: filepath.Join(dir, conversationsFile),
		faqPath:           filepath.Join(dir, faqsFile),
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// EnsureInitialized creates the data directory and both documents if they are
// missing. Existing documents are left untouched, so it is safe to call on
// every operation.
func (s *FileStore) EnsureInitialized(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureInitialized()
}

func (s *FileStore) ensureInitialized() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	if err := createIfMissing(s.conversationsPath, conversationDoc{Conversations: map[string][]Turn{}}); err != nil {
		return fmt.Errorf("init conversations: %w", err)
	}
	if err := createIfMissing(s.faqPath, faqDoc{FAQs: DefaultFAQs}); err != nil {
		return fmt.Errorf("init faqs: %w", err)
	}
	return nil
}

// History returns the turns for sessionID in insertion order, or an empty slice
// for an unknown session.
func (s *FileStore) History(ctx context.Context, sessionID string) ([]Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}

	doc, err := s.readConversations()
	if err != nil {
		return nil, err
	}

	turns := doc.Conversations[sessionID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out, nil
}

// AppendTurn appends a user turn and an assistant turn to the session and
// persists the whole document. On failure the previous document is untouched.
func (s *FileStore) AppendTurn(ctx context.Context, sessionID, userContent, assistantContent string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureInitialized(); err != nil {
		return err
	}

	doc, err := s.readConversations()
	if err != nil {
		return err
	}

	doc.Conversations[sessionID] = append(doc.Conversations[sessionID], newExchange(userContent, assistantContent, s.now())...)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal conversations: %w", err)
	}
	if err := writeFileAtomic(s.conversationsPath, data); err != nil {
		return fmt.Errorf("write conversations: %w", err)
	}
	return nil
}

// FAQs returns the reference FAQ set.
func (s *FileStore) FAQs(ctx context.Context) ([]FAQ, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureInitialized(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.faqPath)
	if err != nil {
		return nil, fmt.Errorf("read faqs: %w", err)
	}

	var doc faqDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse faqs: %w", err)
	}
	if doc.FAQs == nil {
		return []FAQ{}, nil
	}
	return doc.FAQs, nil
}

func (s *FileStore) Close() {}

func (s *FileStore) readConversations() (*conversationDoc, error) {
	data, err := os.ReadFile(s.conversationsPath)
	if err != nil {
		return nil, fmt.Errorf("read conversations: %w", err)
	}

	var doc conversationDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse conversations: %w", err)
	}
	if doc.Conversations == nil {
		doc.Conversations = map[string][]Turn{}
	}
	return &doc, nil
}

func createIfMissing(path string, doc any) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	return writeFileAtomic(path, data)
}

// writeFileAtomic writes to a temp file in the same directory and renames it
// over path, so readers see either the old or the new document.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	return os.Rename(tmpName, path)
}
