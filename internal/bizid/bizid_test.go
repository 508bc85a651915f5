package bizid

import (
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var idPattern = regexp.MustCompile(`^[A-Z]+-\d{4}-\d{5}$`)

func TestNew_Format(t *testing.T) {
	for i := 0; i < 100; i++ {
		id := New(DefaultPrefix)
		assert.Regexp(t, idPattern, id)
	}
}

func TestNew_UsesCurrentYear(t *testing.T) {
	id := New(DefaultPrefix)
	assert.Contains(t, id, fmt.Sprintf("FPW-%d-", time.Now().Year()))
}

func TestNewAt_SuffixRange(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 100; i++ {
		id := newAt("FPW", now)
		assert.Regexp(t, idPattern, id)
		// 5桁固定（先頭ゼロなし）
		assert.GreaterOrEqual(t, id[len(id)-5:], "10000")
	}
}

func TestNew_CustomPrefix(t *testing.T) {
	assert.Regexp(t, idPattern, New("ABC"))
}
