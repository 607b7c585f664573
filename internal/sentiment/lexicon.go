package sentiment

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/selivandex/catalog-ranker/pkg/logger"
)

// Lexicon holds the positive and negative word sets.
// It is immutable after construction and safe for concurrent reads.
type Lexicon struct {
	positive map[string]struct{}
	negative map[string]struct{}
}

// NewLexicon builds a lexicon from in-memory word lists.
// Words are trimmed and lowercased; blanks are skipped.
func NewLexicon(positive, negative []string) *Lexicon {
	return &Lexicon{
		positive: buildSet(positive),
		negative: buildSet(negative),
	}
}

// LoadLexicon reads the two newline-delimited word lists.
// A missing or unreadable file leaves that side empty and is logged; it
// never fails the caller. The returned error lists what was degraded.
func LoadLexicon(positivePath, negativePath string) (*Lexicon, error) {
	var errs []error

	positive, err := readWordFile(positivePath)
	if err != nil {
		logger.Warn("positive word list unavailable, using empty set",
			zap.String("path", positivePath),
			zap.Error(err),
		)
		errs = append(errs, err)
	}

	negative, err := readWordFile(negativePath)
	if err != nil {
		logger.Warn("negative word list unavailable, using empty set",
			zap.String("path", negativePath),
			zap.Error(err),
		)
		errs = append(errs, err)
	}

	lex := &Lexicon{positive: positive, negative: negative}

	logger.Info("sentiment lexicon loaded",
		zap.Int("positive_words", len(lex.positive)),
		zap.Int("negative_words", len(lex.negative)),
	)

	return lex, errors.Join(errs...)
}

// ReadWordList parses one word per line. Lines starting with '#' are comments.
func ReadWordList(r io.Reader) ([]string, error) {
	var words []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return words, nil
}

// IsPositive reports whether token is in the positive set
func (l *Lexicon) IsPositive(token string) bool {
	_, ok := l.positive[token]
	return ok
}

// IsNegative reports whether token is in the negative set
func (l *Lexicon) IsNegative(token string) bool {
	_, ok := l.negative[token]
	return ok
}

// Size returns the number of positive and negative words
func (l *Lexicon) Size() (positive, negative int) {
	return len(l.positive), len(l.negative)
}

// Empty reports whether both sets are empty
func (l *Lexicon) Empty() bool {
	return len(l.positive) == 0 && len(l.negative) == 0
}

func readWordFile(path string) (map[string]struct{}, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]struct{}{}, fmt.Errorf("word list %s not found: %w", path, err)
		}
		return map[string]struct{}{}, fmt.Errorf("failed to open word list %s: %w", path, err)
	}
	defer f.Close()

	words, err := ReadWordList(f)
	if err != nil {
		return map[string]struct{}{}, fmt.Errorf("failed to read word list %s: %w", path, err)
	}
	return buildSet(words), nil
}

func buildSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}
