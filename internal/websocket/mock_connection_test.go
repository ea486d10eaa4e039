package websocket

import (
	"net"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockConnection is a mock implementation of Conn
type MockConnection struct {
	mock.Mock
}

func (m *MockConnection) WriteMessage(messageType int, data []byte) error {
	args := m.Called(messageType, data)
	return args.Error(0)
}

func (m *MockConnection) ReadMessage() (int, []byte, error) {
	args := m.Called()
	var data []byte
	if b, ok := args.Get(1).([]byte); ok {
		data = b
	}
	return args.Int(0), data, args.Error(2)
}

func (m *MockConnection) Close() error {
	return m.Called().Error(0)
}

func (m *MockConnection) SetReadDeadline(t time.Time) error {
	return m.Called(t).Error(0)
}

func (m *MockConnection) SetWriteDeadline(t time.Time) error {
	return m.Called(t).Error(0)
}

func (m *MockConnection) SetReadLimit(limit int64) {
	m.Called(limit)
}

func (m *MockConnection) SetPongHandler(h func(string) error) {
	m.Called(h)
}

func (m *MockConnection) RemoteAddr() net.Addr {
	addr, _ := m.Called().Get(0).(net.Addr)
	return addr
}

func newMockConnection() *MockConnection {
	conn := &MockConnection{}
	conn.On("RemoteAddr").Return(&net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 5000}).Maybe()
	return conn
}
