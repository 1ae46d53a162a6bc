// Package smtpingest accepts messages over SMTP and stores them as
// pending inputs for analysis, as an alternative to polling the
// capture-service API.
package smtpingest

import (
	"bufio"
	"context"
	"io"
	"net/mail"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hollis/phishguard/internal/core"
	"github.com/hollis/phishguard/internal/mailparse"
)

// Server is an SMTP listener that persists every received message
type Server struct {
	store      core.EmailStore
	logger     *zap.Logger
	listenAddr string
	server     *smtp.Server
}

// NewServer creates an SMTP ingest server
func NewServer(store core.EmailStore, logger *zap.Logger, listenAddr string) *Server {
	return &Server{
		store:      store,
		logger:     logger,
		listenAddr: listenAddr,
	}
}

// Start begins listening for SMTP connections
func (s *Server) Start() error {
	s.server = smtp.NewServer(&backend{ingest: s})
	s.server.Addr = s.listenAddr
	s.server.Domain = "localhost"
	s.server.ReadTimeout = 30 * time.Second
	s.server.WriteTimeout = 30 * time.Second
	s.server.MaxMessageBytes = 30 * 1024 * 1024
	s.server.MaxRecipients = 50
	s.server.AllowInsecureAuth = true

	s.logger.Info("SMTP ingest starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != smtp.ErrServerClosed {
			s.logger.Error("SMTP server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the listener down
func (s *Server) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// ingestMessage parses and stores one received message
func (s *Server) ingestMessage(r io.Reader) error {
	msg, err := mail.ReadMessage(bufio.NewReader(r))
	if err != nil {
		s.logger.Warn("Failed to parse incoming message", zap.Error(err))
		return err
	}

	email, err := mailparse.FromMessage(msg)
	if err != nil {
		s.logger.Warn("Failed to convert incoming message", zap.Error(err))
		return err
	}

	email.SourceID = msg.Header.Get("Message-Id")
	if email.SourceID == "" {
		email.SourceID = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stored, err := s.store.SaveEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to store incoming message", zap.Error(err))
		return err
	}

	s.logger.Info("Message ingested",
		zap.String("email_id", stored.ID),
		zap.String("sender", email.From.Address),
		zap.String("subject", email.Subject))
	return nil
}

// backend implements the go-smtp Backend interface
type backend struct {
	ingest *Server
}

// NewSession creates a new SMTP session
func (b *backend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &session{ingest: b.ingest}, nil
}

// session implements the go-smtp Session interface
type session struct {
	ingest *Server
}

// Mail handles the MAIL FROM command
func (s *session) Mail(_ string, _ *smtp.MailOptions) error {
	return nil
}

// Rcpt handles the RCPT TO command
func (s *session) Rcpt(_ string, _ *smtp.RcptOptions) error {
	return nil
}

// Data receives the message body
func (s *session) Data(r io.Reader) error {
	return s.ingest.ingestMessage(r)
}

// Reset discards session state
func (s *session) Reset() {}

// Logout ends the session
func (s *session) Logout() error {
	return nil
}
