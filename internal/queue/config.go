package queue

import "time"

// Config is the configuration of the netfilter queue reader.
type Config struct {
	// NfQueue is the number of the queue to bind to.
	NfQueue       uint16        `yaml:"nfqueue"`
	MaxQueueLen   uint32        `yaml:"max_queue_len"`
	MaxPacketLen  uint32        `yaml:"max_packet_len"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	WorkerNum     int           `yaml:"worker_num"`
	SocketBuffer  int           `yaml:"socket_buffer"`
	ReceiveBuffer int           `yaml:"receive_buffer"`
}

// Default sets the default values for the configuration.
func (m *Config) Default() {
	m.NfQueue = 100
	m.MaxQueueLen = 1024
	m.MaxPacketLen = 0xffff
	m.WriteTimeout = 15 * time.Millisecond
	m.WorkerNum = 4
	m.SocketBuffer = 4 << 20
}
