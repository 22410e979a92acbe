package service

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

type Logger interface {
	Error(msg string, v ...interface{})
	Warn(msg string, v ...interface{})
	Info(msg string, v ...interface{})
	Debug(msg string, v ...interface{})
}

type (
	Service interface {
		Init() error
		Run(ctx context.Context)
		Stop()
	}
	Services interface {
		AddService(service ...Service)
		Run(ctx context.Context) error
	}
	Manager struct {
		log      Logger
		services []Service
		signals  []os.Signal
		running  sync.WaitGroup
	}
)

func NewManager(log Logger) Services {
	return &Manager{log: log, signals: []os.Signal{os.Interrupt, syscall.SIGTERM}}
}

func (s *Manager) AddService(service ...Service) {
	s.services = append(s.services, service...)
}

// Run initialises every service in order and starts it. If one fails to
// initialise, the ones already started are stopped and the error returned.
// Otherwise Run blocks until a signal arrives or ctx ends, then stops all.
// Run returns only after every started service's Run has returned.
func (s *Manager) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.log.Info("going to start services", "count", len(s.services))
	for count, service := range s.services {
		if err := service.Init(); err != nil {
			for i := 0; i < count; i++ {
				s.services[i].Stop()
			}
			cancel()
			s.running.Wait()
			return err
		}
		s.running.Add(1)
		go func(service Service) {
			defer s.running.Done()
			service.Run(ctx)
		}(service)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, s.signals...)
	defer signal.Stop(c)

	select {
	case <-c:
	case <-ctx.Done():
	}
	s.stop()
	cancel()
	s.running.Wait()
	s.log.Info("services stopped")

	return nil
}

func (s *Manager) stop() {
	s.log.Info("going to stop")
	for _, service := range s.services {
		service.Stop()
	}
}
