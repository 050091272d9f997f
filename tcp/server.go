package tcp

import (
	"context"
	"net"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"framed/config"
	"framed/util/log"

	svciface "framed/interface/service"
)

// Server is the platform-specific listener built by NewServer: the epoll
// implementation on linux, GoNetServer everywhere else.
type Server interface {
	Start() error
}

// GoNetServer is the portable goroutine-per-connection server.
type GoNetServer struct {
	address     string
	activeConns sync.Map
	listener    net.Listener
	svc         svciface.Service
}

func NewGoNetServer(address string, svc svciface.Service) *GoNetServer {
	return &GoNetServer{
		address: address,
		svc:     svc,
	}
}

func (s *GoNetServer) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.listener = listener
	ctx, cancel := context.WithCancel(context.Background())
	// start service execution loop
	go func() {
		execErr := s.svc.ExecuteLoop()
		if execErr != nil {
			panic(execErr)
		}
	}()

	go func() {
		// wait for close signal
		<-ctx.Done()
		log.Info("shutting down framed server...")
		_ = s.listener.Close()
		s.svc.Close()
	}()
	notifyOnShutdownSignals(cancel)
	startPprofServer()

	log.Info("framed server started, listen: %s", listener.Addr())
	// run acceptor
	err = s.acceptLoop(ctx)
	if err != nil {
		cancel()
	}
	return nil
}

/*
TCP acceptor
Accept conns in a loop, make connections and create read/write loop for
each connection
*/
func (s *GoNetServer) acceptLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			_ = s.listener.Close()
			return nil
		default:
		}
		conn, err := s.listener.Accept()
		if err != nil {
			return nil
		}
		connection := NewConnection(conn, s.svc, config.Properties.MaxMessageBytes)
		s.activeConns.Store(connection, 1)
		// start read loop
		go func(connect *Connection) {
			rErr := connect.ReadLoop()
			if rErr != nil {
				connect.Close()
				s.svc.OnConnectionClosed(connect)
			}
			s.activeConns.Delete(connect)
		}(connection)

		// start write loop
		go func(connect *Connection) {
			wErr := connect.WriteLoop()
			if wErr != nil {
				connect.Close()
				s.svc.OnConnectionClosed(connect)
			}
			s.activeConns.Delete(connect)
		}(connection)
	}
}

func notifyOnShutdownSignals(cancel context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigCh
		switch sig {
		case syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT:
			cancel()
		}
	}()
}

func startPprofServer() {
	if port := config.Properties.PprofPort; port != "" {
		go func() {
			_ = http.ListenAndServe(":"+port, nil)
		}()
	}
}
