package crypto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type MockTimeProvider struct {
	currentTime time.Time
}

func (m *MockTimeProvider) Now() time.Time { return m.currentTime }

func TestTimeProvider_Default(t *testing.T) {
	before := time.Now()
	got := DefaultTimeProvider{}.Now()
	assert.False(t, got.Before(before))
}

func TestOrDefault(t *testing.T) {
	assert.IsType(t, DefaultTimeProvider{}, OrDefault(nil))

	mock := &MockTimeProvider{currentTime: time.Unix(1000, 0)}
	assert.Same(t, mock, OrDefault(mock))
	assert.Equal(t, "1970-01-01", OrDefault(mock).Now().UTC().Format(DayFormat))
}
