package spinner

import (
	"testing"
	"time"
)

func TestStartStop(t *testing.T) {
	s := New("思考中...")
	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()
}

func TestStopWithoutStart(t *testing.T) {
	s := New("x")
	s.Stop() // 不應 panic
}

func TestDoubleStart(t *testing.T) {
	s := New("x")
	s.Start()
	s.Start() // 重複啟動應為 no-op
	s.Stop()
}

func TestRestart(t *testing.T) {
	s := New("x")
	for i := 0; i < 3; i++ {
		s.Start()
		time.Sleep(20 * time.Millisecond)
		s.Stop()
	}
}
