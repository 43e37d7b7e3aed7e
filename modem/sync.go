package modem

import "sync"

// Synchronized wraps m so that calls from several goroutines are serialized.
// The token refresh of the wrapped session then never races.
func Synchronized(m Modem) Modem {
	if s, ok := m.(*syncModem); ok {
		return s
	}
	return &syncModem{modem: m}
}

type syncModem struct {
	mu    sync.Mutex
	modem Modem
}

func (s *syncModem) GetStatus() (*Status, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modem.GetStatus()
}

func (s *syncModem) GetMessageCount() (*MessageCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modem.GetMessageCount()
}

func (s *syncModem) GetMessages(delete bool) ([]SMSMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modem.GetMessages(delete)
}

func (s *syncModem) DeleteMessage(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modem.DeleteMessage(id)
}

func (s *syncModem) DeleteMessages(ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modem.DeleteMessages(ids)
}

func (s *syncModem) Interface() string {
	return s.modem.Interface()
}

func (s *syncModem) GetModel() Model {
	return s.modem.GetModel()
}

func (s *syncModem) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.modem.Close()
}
