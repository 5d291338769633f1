package app

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// SessionParams is what the operator chooses at startup.
type SessionParams struct {
	Base     string
	Quote    string
	Duration time.Duration
}

// ReadSessionParams interactively collects the trading pair and session
// length. Empty answers fall back to the shown defaults.
func ReadSessionParams(r io.Reader, w io.Writer) (SessionParams, error) {
	sc := bufio.NewScanner(r)

	base, err := ask(sc, w, "Base asset", "BTC")
	if err != nil {
		return SessionParams{}, err
	}
	quote, err := ask(sc, w, "Quote asset", "USDT")
	if err != nil {
		return SessionParams{}, err
	}
	minutesStr, err := ask(sc, w, "Session length (minutes)", "60")
	if err != nil {
		return SessionParams{}, err
	}

	minutes, err := strconv.Atoi(minutesStr)
	if err != nil || minutes <= 0 {
		return SessionParams{}, fmt.Errorf("session length must be a positive number of minutes, got %q", minutesStr)
	}

	params := SessionParams{
		Base:     strings.ToUpper(base),
		Quote:    strings.ToUpper(quote),
		Duration: time.Duration(minutes) * time.Minute,
	}
	if params.Base == params.Quote {
		return SessionParams{}, fmt.Errorf("base and quote must differ, got %s/%s", params.Base, params.Quote)
	}
	return params, nil
}

func ask(sc *bufio.Scanner, w io.Writer, label, def string) (string, error) {
	fmt.Fprintf(w, "%s [%s]: ", label, def)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	answer := strings.TrimSpace(sc.Text())
	if answer == "" {
		return def, nil
	}
	return answer, nil
}
