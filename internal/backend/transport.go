package backend

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"latexify/internal/config"
	"latexify/internal/errors"

	"github.com/fsnotify/fsnotify"
)

// certReloader holds the current client certificate pair and replaces it
// when the files on disk change. Reloads are debounced because atomic
// writes produce several filesystem events in quick succession.
type certReloader struct {
	mu sync.RWMutex

	cert     *tls.Certificate
	certFile string
	keyFile  string

	fsWatcher     *fsnotify.Watcher
	debounceDelay time.Duration
	debounceTimer *time.Timer

	stopChan chan struct{}
	onReload func()
	logger   *errors.Logger
}

// newCertReloader loads the initial certificate pair and starts watching both
// files for changes
func newCertReloader(certFile, keyFile string, debounceDelay time.Duration, logger *errors.Logger) (*certReloader, error) {
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client certificate: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	cr := &certReloader{
		cert:          &cert,
		certFile:      certFile,
		keyFile:       keyFile,
		fsWatcher:     watcher,
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		logger:        logger,
	}

	for _, file := range []string{certFile, keyFile} {
		// Watch the directory too, to catch atomic writes (rename operations)
		if err := watcher.Add(filepath.Dir(file)); err != nil {
			cleanupErr := watcher.Close()
			if cleanupErr != nil && logger != nil {
				logger.LogError(cleanupErr, "Failed to close file watcher during cleanup")
			}
			return nil, fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(file), err)
		}
	}

	go cr.watchLoop()

	if logger != nil {
		logger.Info("Client certificate watcher started",
			"cert_file", certFile,
			"key_file", keyFile,
			"debounce_delay", debounceDelay)
	}

	return cr, nil
}

// getClientCertificate satisfies tls.Config.GetClientCertificate so new
// connections pick up reloaded certificates
func (cr *certReloader) getClientCertificate(*tls.CertificateRequestInfo) (*tls.Certificate, error) {
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	return cr.cert, nil
}

func (cr *certReloader) watchLoop() {
	for {
		select {
		case event, ok := <-cr.fsWatcher.Events:
			if !ok {
				return
			}
			if cr.shouldProcessEvent(event) {
				cr.scheduleReload()
			}

		case err, ok := <-cr.fsWatcher.Errors:
			if !ok {
				return
			}
			if cr.logger != nil {
				cr.logger.LogError(err, "Certificate file watcher error")
			}

		case <-cr.stopChan:
			return
		}
	}
}

func (cr *certReloader) shouldProcessEvent(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if name != filepath.Base(cr.certFile) && name != filepath.Base(cr.keyFile) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// scheduleReload schedules a debounced reload
func (cr *certReloader) scheduleReload() {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	if cr.debounceTimer != nil {
		cr.debounceTimer.Stop()
	}
	cr.debounceTimer = time.AfterFunc(cr.debounceDelay, cr.reload)
}

// reload swaps in the new certificate pair. A half-written pair fails to
// parse and the previous certificate stays active.
func (cr *certReloader) reload() {
	cert, err := tls.LoadX509KeyPair(cr.certFile, cr.keyFile)
	if err != nil {
		if cr.logger != nil {
			cr.logger.Warn("Failed to reload client certificate, keeping previous",
				"cert_file", cr.certFile, "error", err)
		}
		return
	}

	cr.mu.Lock()
	cr.cert = &cert
	onReload := cr.onReload
	cr.mu.Unlock()

	if cr.logger != nil {
		cr.logger.Info("Client certificate reloaded", "cert_file", cr.certFile)
	}
	if onReload != nil {
		onReload()
	}
}

// Close stops the watcher goroutine
func (cr *certReloader) Close() {
	cr.mu.Lock()
	defer cr.mu.Unlock()

	close(cr.stopChan)
	if cr.debounceTimer != nil {
		cr.debounceTimer.Stop()
	}
	if err := cr.fsWatcher.Close(); err != nil && cr.logger != nil {
		cr.logger.LogError(err, "Failed to close certificate file watcher")
	}
}

// buildTLSConfig translates the client TLS configuration into a tls.Config.
// It returns a nil tls.Config in disabled mode, and a non-nil certReloader
// only when auto reload applies (mutual mode with file-based certificates).
func buildTLSConfig(cfg config.ClientTLSConfig, logger *errors.Logger) (*tls.Config, *certReloader, error) {
	if cfg.Mode == "" || cfg.Mode == "disabled" {
		return nil, nil, nil
	}

	tlsConfig := &tls.Config{
		MinVersion:         tlsVersionFromString(cfg.MinVersion),
		ServerName:         cfg.ServerName,
		InsecureSkipVerify: cfg.InsecureSkipVerify,
	}

	if err := applyRootCAs(tlsConfig, cfg); err != nil {
		return nil, nil, err
	}

	if cfg.Mode != "mutual" {
		return tlsConfig, nil, nil
	}

	// Content-based certificates come from Vault and cannot be watched.
	if cfg.CertContent != "" {
		cert, err := tls.X509KeyPair([]byte(cfg.CertContent), []byte(cfg.KeyContent))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse client certificate content: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
		return tlsConfig, nil, nil
	}

	if !cfg.AutoReload.Enabled {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
		return tlsConfig, nil, nil
	}

	reloader, err := newCertReloader(cfg.CertFile, cfg.KeyFile, cfg.AutoReload.DebounceDelay, logger)
	if err != nil {
		return nil, nil, err
	}
	tlsConfig.GetClientCertificate = reloader.getClientCertificate

	return tlsConfig, reloader, nil
}

// applyRootCAs installs a custom CA pool when one is configured
func applyRootCAs(tlsConfig *tls.Config, cfg config.ClientTLSConfig) error {
	var pem []byte
	switch {
	case cfg.CAContent != "":
		pem = []byte(cfg.CAContent)
	case cfg.CAFile != "":
		data, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return fmt.Errorf("failed to read CA file %s: %w", cfg.CAFile, err)
		}
		pem = data
	default:
		return nil
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return fmt.Errorf("no valid certificates found in CA bundle")
	}
	tlsConfig.RootCAs = pool
	return nil
}

func tlsVersionFromString(version string) uint16 {
	switch version {
	case "1.3":
		return tls.VersionTLS13
	default:
		return tls.VersionTLS12
	}
}
