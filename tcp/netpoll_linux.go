//go:build linux

package tcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"

	"framed/message"
	"framed/util/log"
)

const (
	EpollRead     = syscall.EPOLLIN | unix.EPOLLET
	EpollClose    = syscall.EPOLLRDHUP
	EpollWritable = syscall.EPOLLOUT
)

type EpollManager struct {
	conns       *sync.Map
	sockFd      int
	epollFd     int
	onReadEvent func(conn *EpollConnection) error
	waitMsec    int

	maxMessageBytes int
}

// EpollConnection is one edge-triggered non-blocking connection. Arriving
// chunks are appended straight into the frame decoder's receive buffer.
type EpollConnection struct {
	fd           int
	remoteAddr   string
	epollManager *EpollManager
	decoder      *message.Decoder

	wMutex      *sync.Mutex
	writeBuffer *bytes.Buffer
	active      uint32
}

func NewEpoll(maxMessageBytes int) *EpollManager {
	return &EpollManager{conns: &sync.Map{}, maxMessageBytes: maxMessageBytes}
}

func NewEpollConnection(fd int, remoteAddr string, epollManager *EpollManager) *EpollConnection {
	return &EpollConnection{
		fd:           fd,
		remoteAddr:   remoteAddr,
		epollManager: epollManager,
		decoder:      message.NewDecoder(epollManager.maxMessageBytes),
		writeBuffer:  &bytes.Buffer{},
		active:       1,
		wMutex:       &sync.Mutex{},
	}
}

func (e *EpollManager) Listen(address string) error {
	ipAddr, sockPort, err := parseIPAddr(address)
	if err != nil {
		return fmt.Errorf("invalid address format, parse IP Error: %w", err)
	}
	fd, err := syscall.Socket(syscall.AF_INET, syscall.SOCK_STREAM, syscall.IPPROTO_TCP)
	if err != nil {
		return err
	}
	if err := syscall.Bind(fd, &syscall.SockaddrInet4{Addr: ipAddr, Port: sockPort}); err != nil {
		return fmt.Errorf("bind socket error: %w", err)
	}
	if err := syscall.Listen(fd, 128); err != nil {
		return fmt.Errorf("listen fd error: %w", err)
	}
	if epfd, err := syscall.EpollCreate1(0); err != nil {
		return fmt.Errorf("epoll create error: %w", err)
	} else {
		e.sockFd = fd
		e.epollFd = epfd
	}
	return nil
}

func (e *EpollManager) Accept() error {
	nfd, sa, err := syscall.Accept(e.sockFd)
	if err != nil {
		return fmt.Errorf("accept conn error %w", err)
	}
	if err := syscall.SetNonblock(nfd, true); err != nil {
		return fmt.Errorf("set socket non-block error %w", err)
	}
	e.conns.Store(nfd, NewEpollConnection(nfd, sockaddrString(sa), e))
	// read, write and peer-close events
	if err := epollCtl(e.epollFd, int32(nfd), syscall.EPOLL_CTL_ADD, EpollRead|EpollWritable|EpollClose); err != nil {
		e.conns.Delete(nfd)
		return err
	}
	return nil
}

func (e *EpollManager) CloseConn(conn *EpollConnection) error {
	atomic.StoreUint32(&conn.active, 0)
	err := syscall.EpollCtl(e.epollFd, syscall.EPOLL_CTL_DEL, conn.fd, nil)
	if err != nil {
		return err
	}
	e.conns.Delete(conn.fd)
	return syscall.Close(conn.fd)
}

// Handle runs the epoll event loop.
func (e *EpollManager) Handle(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		events := make([]syscall.EpollEvent, 1024)
		n, err := epollWait(e.epollFd, events, e.waitMsec)
		if err != nil {
			if err.Error() == "interrupted system call" {
				continue
			}
			return fmt.Errorf("epoll wait error: %v", err)
		}
		// no events, switch to blocking wait
		if n <= 0 {
			e.waitMsec = -1
			runtime.Gosched()
			continue
		}
		e.waitMsec = 0
		for i := 0; i < n; i++ {
			v, ok := e.conns.Load(int(events[i].Fd))
			if !ok {
				log.Errorf("unknown connection fd: %d", events[i].Fd)
				continue
			}
			conn := v.(*EpollConnection)
			if events[i].Events&EpollClose == uint32(EpollClose) {
				if err := e.CloseConn(conn); err != nil {
					return fmt.Errorf("close conn error: %v", err)
				}
				continue
			}
			if events[i].Events&syscall.EPOLLIN == syscall.EPOLLIN {
				err := e.onReadEvent(conn)
				if err != nil {
					if !errors.Is(err, io.EOF) {
						log.Errorf("read error: %v", err)
					}
					_ = e.CloseConn(conn)
				}
			}
			if events[i].Events&EpollWritable == EpollWritable {
				// drain whatever an earlier short write left behind
				conn.wMutex.Lock()
				if n := conn.writeBuffer.Len(); n > 0 {
					if _, err := conn.writeBuffer.WriteTo(conn); err != nil {
						log.Errorf("write error: %v", err)
						conn.wMutex.Unlock()
						_ = e.CloseConn(conn)
						continue
					}
				}
				conn.wMutex.Unlock()
			}
		}
	}
}

// epollWait wraps the EpollWait syscall; RawSyscall6 for the non-blocking
// case keeps the runtime from parking the goroutine.
func epollWait(epfd int, events []syscall.EpollEvent, msec int) (n int, err error) {
	var r0 uintptr
	var _p0 = unsafe.Pointer(&events[0])
	if msec == 0 {
		r0, _, err = syscall.RawSyscall6(syscall.SYS_EPOLL_WAIT, uintptr(epfd), uintptr(_p0), uintptr(len(events)), 0, 0, 0)
	} else {
		r0, _, err = syscall.Syscall6(syscall.SYS_EPOLL_WAIT, uintptr(epfd), uintptr(_p0), uintptr(len(events)), uintptr(msec), 0, 0)
	}
	if err == syscall.Errno(0) {
		err = nil
	}
	return int(r0), err
}

func epollCtl(epfd int, fd int32, op int, events uint32) error {
	return syscall.EpollCtl(epfd, op, int(fd), &syscall.EpollEvent{
		Events: events,
		Fd:     fd,
	})
}

func (e *EpollManager) Close() {
	_ = syscall.Close(e.epollFd)
	_ = syscall.Close(e.sockFd)
}

func (c *EpollConnection) Read(payload []byte) (int, error) {
	return syscall.Read(c.fd, payload)
}

func (c *EpollConnection) Write(payload []byte) (int, error) {
	return syscall.Write(c.fd, payload)
}

// ReadBuffered moves one chunk from the socket into the decoder's
// receive buffer. io.EOF reports an orderly peer close.
func (c *EpollConnection) ReadBuffered() (int, error) {
	buf := bytesPool.Get().([]byte)
	defer bytesPool.Put(buf)
	n, err := syscall.Read(c.fd, buf)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return c.decoder.Buffer().Write(buf[:n])
}

func (c *EpollConnection) Send(reply *message.Message) {
	payload := message.Encode(reply)
	c.wMutex.Lock()
	defer c.wMutex.Unlock()
	if c.writeBuffer.Len() > 0 {
		c.writeBuffer.Write(payload)
		return
	}
	n, err := c.Write(payload)
	// EAGAIN means the socket send buffer is full, park the remainder
	// until EPOLLOUT
	if err == syscall.EAGAIN {
		if n < 0 {
			n = 0
		}
		c.writeBuffer.Write(payload[n:])
	}
}

func (c *EpollConnection) Close() {
	_ = c.epollManager.CloseConn(c)
}

func (c *EpollConnection) Active() bool {
	return atomic.LoadUint32(&c.active) == 1
}

func (c *EpollConnection) RemoteAddr() string {
	return c.remoteAddr
}

func parseIPAddr(address string) (ipAddr [4]byte, sockPort int, parseErr error) {
	parts := strings.Split(address, ":")
	if len(parts) != 2 {
		parseErr = errors.New("invalid address")
		return
	}
	if port, err := strconv.Atoi(parts[1]); err != nil {
		parseErr = errors.New("invalid address")
		return
	} else {
		sockPort = port
	}
	copy(ipAddr[:], net.ParseIP(parts[0]).To4())
	return
}

func sockaddrString(sa syscall.Sockaddr) string {
	switch a := sa.(type) {
	case *syscall.SockaddrInet4:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	case *syscall.SockaddrInet6:
		return net.JoinHostPort(net.IP(a.Addr[:]).String(), strconv.Itoa(a.Port))
	default:
		return ""
	}
}
