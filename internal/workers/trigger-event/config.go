package triggerevent

import "time"

type Config struct {
	Timeout     time.Duration
	MaxJobs     int
	Concurrency int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     30 * time.Second,
		MaxJobs:     32,
		Concurrency: 4,
	}
}
