package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/kevin07696/settlement-reconciler/internal/config"
)

// prompter asks for missing settings on the terminal
type prompter struct {
	in  *bufio.Reader
	out io.Writer
	// readSecret reads a line without echo
	readSecret func() (string, error)
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(in), out: out}
	p.readSecret = func() (string, error) {
		if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			b, err := term.ReadPassword(int(f.Fd()))
			fmt.Fprintln(out)
			return string(b), err
		}
		return p.readLine()
	}
	return p
}

func (p *prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ask prompts for label, returning current when the answer is blank
func (p *prompter) ask(label, current string) (string, error) {
	if current != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(p.out, "%s: ", label)
	}
	answer, err := p.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return current, nil
	}
	return answer, nil
}

func (p *prompter) askSecret(label string) (string, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	return p.readSecret()
}

// fillMissing prompts for each required setting that is still empty
func (p *prompter) fillMissing(cfg *config.Config) error {
	for _, field := range cfg.Missing() {
		switch field {
		case "report_path":
			v, err := p.ask("Settlement report path", "")
			if err != nil {
				return err
			}
			cfg.ReportPath = v
		case "excluded_product_id":
			v, err := p.ask("Excluded product id", "")
			if err != nil {
				return err
			}
			cfg.ExcludedProductID = v
		}
	}
	return nil
}
