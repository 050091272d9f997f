//go:build !linux

package tcp

import svciface "framed/interface/service"

func NewServer(address string, svc svciface.Service) Server {
	return NewGoNetServer(address, svc)
}
