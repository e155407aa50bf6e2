package repl

import (
	"bufio"
	"io"
	"net"

	"github.com/apex/log"
	"github.com/pkg/errors"
)

// Accept waits for a single connection on host:port.
func Accept(host, port string) (net.Conn, error) {
	addr := net.JoinHostPort(host, port)
	log.WithField("addr", addr).Info("waiting for connection")
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "listen failed")
	}
	defer ln.Close()
	return ln.Accept()
}

// Serve runs commands read line by line from rw, writing output and a
// prompt back to it, until quit or EOF.
func (s *Shell) Serve(rw io.ReadWriter) error {
	defer s.Close()
	s.Writer = rw
	scanner := bufio.NewScanner(rw)
	s.Printf("%s", s.prompt())
	for scanner.Scan() {
		if err := s.Eval(scanner.Text()); err == ErrQuit {
			return nil
		} else if err != nil {
			s.Printf("%v\n", err)
		}
		s.Printf("%s", s.prompt())
	}
	return errors.Wrap(scanner.Err(), "read failed")
}
