package notify

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSMTPServer accepts one connection and speaks just enough SMTP to
// receive a single message, which it pushes onto received.
func fakeSMTPServer(t *testing.T, received chan<- string) net.Addr {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		fmt.Fprintf(conn, "220 localhost ESMTP\r\n")

		br := bufio.NewReader(conn)
		var data strings.Builder
		inData := false
		for {
			line, err := br.ReadString('\n')
			if err != nil {
				return
			}
			if inData {
				if strings.TrimRight(line, "\r\n") == "." {
					inData = false
					received <- data.String()
					fmt.Fprintf(conn, "250 OK\r\n")
					continue
				}
				data.WriteString(line)
				continue
			}
			switch cmd := strings.ToUpper(strings.TrimRight(line, "\r\n")); {
			case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
				fmt.Fprintf(conn, "250 localhost\r\n")
			case strings.HasPrefix(cmd, "DATA"):
				inData = true
				fmt.Fprintf(conn, "354 go ahead\r\n")
			case strings.HasPrefix(cmd, "QUIT"):
				fmt.Fprintf(conn, "221 bye\r\n")
				return
			default:
				fmt.Fprintf(conn, "250 OK\r\n")
			}
		}
	}()

	return ln.Addr()
}

func TestMailerSend(t *testing.T) {
	received := make(chan string, 1)
	addr := fakeSMTPServer(t, received)

	mailer := NewMailer(addr.String(), "noreply@example.com")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	require.NoError(t, mailer.Send(ctx, "dev@example.com", "Bug report #1 is fixed", "details"))

	select {
	case msg := <-received:
		assert.Contains(t, msg, "To: dev@example.com")
		assert.Contains(t, msg, "Subject: Bug report #1 is fixed")
		assert.Contains(t, msg, "details")
	case <-time.After(5 * time.Second):
		t.Fatal("message never arrived")
	}
}

func TestMailerSendHonorsContext(t *testing.T) {
	mailer := NewMailer("127.0.0.1:2525", "noreply@example.com")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := mailer.Send(ctx, "dev@example.com", "subject", "body")
	assert.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
