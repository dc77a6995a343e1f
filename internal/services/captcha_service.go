package services

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CaptchaService produces the small arithmetic question shown on the
// registration form.
type CaptchaService struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

func NewCaptchaService() *CaptchaService {
	return NewSeededCaptchaService(time.Now().UnixNano())
}

// NewSeededCaptchaService returns a service with a reproducible sequence.
func NewSeededCaptchaService(seed int64) *CaptchaService {
	return &CaptchaService{rnd: rand.New(rand.NewSource(seed))}
}

// GenerateMathProblem returns a display string (e.g. "3 + 5") and the integer answer.
// Store the answer in the session and show the question.
func (s *CaptchaService) GenerateMathProblem() (string, int) {
	s.mu.Lock()
	a := s.rnd.Intn(10)
	b := s.rnd.Intn(10)
	op := s.rnd.Intn(2)
	s.mu.Unlock()

	if op == 0 {
		return fmt.Sprintf("%d + %d", a, b), a + b
	}
	// keep the result non-negative
	if a < b {
		a, b = b, a
	}
	return fmt.Sprintf("%d - %d", a, b), a - b
}

// CheckAnswer compares a submitted form value with the expected answer.
func CheckAnswer(expected int, input string) bool {
	got, err := strconv.Atoi(strings.TrimSpace(input))
	return err == nil && got == expected
}
