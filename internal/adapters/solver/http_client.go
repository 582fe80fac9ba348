package solver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fleet-routing-service/internal/domain"
	"fleet-routing-service/internal/platform/obs"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type solveRequest struct {
	TimeMatrix     [][]float64   `json:"time_matrix"`
	EmissionMatrix [][]int64     `json:"emission_matrix"`
	TimeWindows    [][2]int      `json:"time_windows"`
	ServiceTimes   []float64     `json:"service_times"`
	NumVehicles    int           `json:"num_vehicles"`
	Depot          int           `json:"depot"`
	ObjectiveType  string        `json:"objective_type"`
	FirstSolution  string        `json:"first_solution_strategy"`
	DropPenalties  map[int]int64 `json:"drop_penalties"`
	MaxWait        int           `json:"max_wait"`
	Horizon        int           `json:"horizon"`
}

type solveResponse struct {
	Status      string `json:"status"`
	Reachable   []int  `json:"reachable"`
	Unreachable []int  `json:"unreachable"`
}

// HTTPClient calls a remote route optimizer over JSON.
//
// The remote answers {"status":"solved","reachable":[...],"unreachable":[...]} or
// {"status":"no_solution"}. Calls are not retried.
type HTTPClient struct {
	session *http.Client
	baseURL string
}

func NewHTTPClient(baseURL string, timeout time.Duration) (*HTTPClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("solver http client: base url is empty")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HTTPClient{
		session: &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}, nil
}

func (c *HTTPClient) Solve(ctx context.Context, req domain.RouteRequest) (_ domain.SolveResult, err error) {
	defer obs.Time(ctx, "solver.http.Solve")(&err)

	objective := "time"
	if req.Objective == domain.MinimizeEmission {
		objective = "emission"
	}

	windows := make([][2]int, len(req.TimeWindows))
	for i, w := range req.TimeWindows {
		windows[i] = [2]int{w.Open, w.Close}
	}

	penalties := make(map[int]int64, len(req.Disjunctions))
	for _, d := range req.Disjunctions {
		penalties[d.Stop] = d.Penalty
	}

	payload, err := json.Marshal(solveRequest{
		TimeMatrix:     req.TimeMatrix,
		EmissionMatrix: req.EmissionCosts,
		TimeWindows:    windows,
		ServiceTimes:   req.ServiceTimes,
		NumVehicles:    req.NumVehicles,
		Depot:          req.Depot,
		ObjectiveType:  objective,
		FirstSolution:  string(req.Strategy),
		DropPenalties:  penalties,
		MaxWait:        req.MaxWait,
		Horizon:        req.Horizon,
	})
	if err != nil {
		return domain.SolveResult{}, fmt.Errorf("marshal solve request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/solve", bytes.NewReader(payload))
	if err != nil {
		return domain.SolveResult{}, fmt.Errorf("create solve request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	if reqID := obs.RequestID(ctx); reqID != "" {
		httpReq.Header.Set("X-Request-Id", reqID)
	}

	resp, err := c.session.Do(httpReq)
	if err != nil {
		return domain.SolveResult{}, fmt.Errorf("solve request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return domain.SolveResult{}, fmt.Errorf("solver returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var sr solveResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return domain.SolveResult{}, fmt.Errorf("decode solve response: %w", err)
	}

	switch sr.Status {
	case "no_solution":
		return domain.SolveResult{Status: domain.NoSolution}, nil
	case "solved", "":
		return domain.SolveResult{
			Status:      domain.Solved,
			Sequence:    sr.Reachable,
			Unreachable: sr.Unreachable,
		}, nil
	default:
		return domain.SolveResult{}, fmt.Errorf("solver returned unknown status %q", sr.Status)
	}
}
