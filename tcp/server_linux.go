//go:build linux

package tcp

import (
	"context"
	"errors"
	"fmt"
	_ "net/http/pprof"
	"syscall"

	"framed/config"
	"framed/message"
	"framed/util/log"

	svciface "framed/interface/service"
)

type EpollServer struct {
	em      *EpollManager
	address string
	svc     svciface.Service
}

func NewServer(address string, svc svciface.Service) Server {
	return &EpollServer{
		address: address,
		svc:     svc,
	}
}

func (es *EpollServer) Start() error {
	es.em = NewEpoll(config.Properties.MaxMessageBytes)
	es.em.onReadEvent = es.onReadEvent
	err := es.em.Listen(es.address)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		execErr := es.svc.ExecuteLoop()
		if execErr != nil {
			// the service loop only returns on programming errors
			panic(execErr)
		}
	}()

	go func() {
		// wait for close signal
		<-ctx.Done()
		log.Info("shutting down framed server...")
		es.em.Close()
		es.svc.Close()
	}()
	startPprofServer()

	go func() {
		log.Info("framed server started, ready to accept connections...")
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			err := es.em.Accept()
			if err != nil {
				log.Errorf("accept error: %v", err)
				cancel()
				return
			}
		}
	}()

	go func() {
		err := es.em.Handle(ctx)
		if err != nil {
			log.Errorf("epoll handler error: %v", err)
		}
	}()

	notifyOnShutdownSignals(cancel)
	<-ctx.Done()
	return nil
}

func (es *EpollServer) onReadEvent(conn *EpollConnection) error {
	// drain the socket completely, the event is edge-triggered
	for {
		if _, err := conn.ReadBuffered(); err != nil {
			if err == syscall.EAGAIN {
				break
			}
			return err
		}
	}
	// decode every complete frame sitting in the buffer
	for {
		msg, err := conn.decoder.Decode()
		if errors.Is(err, message.ErrIncomplete) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode error: %w", err)
		}
		es.svc.Submit(conn, msg)
	}
}
