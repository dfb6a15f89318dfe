package dispatch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/exec"
)

// HTTPDocumentSource fetches order documents over plain HTTP. It suits
// sources that expose the printable summary behind a cookie-carrying client;
// the authenticated client is injected by the caller.
type HTTPDocumentSource struct {
	Client *http.Client
}

// FetchOrderDocument performs a GET for the document URL.
func (s *HTTPDocumentSource) FetchOrderDocument(ctx context.Context, url string) ([]byte, error) {
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s for %s", resp.Status, url)
	}
	return io.ReadAll(resp.Body)
}

// CommandPrinter prints by invoking the local spooler command (lp by default).
type CommandPrinter struct {
	Command string
}

// Print submits the file to the spooler.
func (p *CommandPrinter) Print(path string) error {
	command := p.Command
	if command == "" {
		command = "lp"
	}
	return exec.Command(command, path).Run()
}
