package autoscaler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"
)

// CloudDriver reconciles a fleet through a cloud machines API, filtering
// instances by the metadata tag role=worker and destroying the
// oldest-created machine first when scaling down.
type CloudDriver struct {
	BaseURL     string
	AppName     string
	Region      string
	WorkerImage string
	APIToken    string

	client *http.Client
}

// NewCloudDriver builds a CloudDriver against baseURL (the machines
// API root, e.g. "https://api.machines.dev/v1").
func NewCloudDriver(baseURL, appName, region, workerImage, apiToken string) *CloudDriver {
	return &CloudDriver{
		BaseURL:     baseURL,
		AppName:     appName,
		Region:      region,
		WorkerImage: workerImage,
		APIToken:    apiToken,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

type cloudMachine struct {
	ID        string            `json:"id"`
	CreatedAt string            `json:"created_at"`
	State     string            `json:"state"`
	Metadata  map[string]string `json:"metadata"`
}

func (d *CloudDriver) listMachines(ctx context.Context) ([]cloudMachine, error) {
	url := fmt.Sprintf("%s/apps/%s/machines", d.BaseURL, d.AppName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	d.authorize(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list machines: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list machines: unexpected status %d", resp.StatusCode)
	}

	var machines []cloudMachine
	if err := json.NewDecoder(resp.Body).Decode(&machines); err != nil {
		return nil, fmt.Errorf("decode machines: %w", err)
	}

	var workers []cloudMachine
	for _, m := range machines {
		if m.Metadata["role"] == "worker" && m.State != "destroyed" {
			workers = append(workers, m)
		}
	}
	return workers, nil
}

func (d *CloudDriver) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+d.APIToken)
	req.Header.Set("Content-Type", "application/json")
}

// ListWorkers counts live machines tagged role=worker.
func (d *CloudDriver) ListWorkers(ctx context.Context) (int, error) {
	workers, err := d.listMachines(ctx)
	if err != nil {
		return 0, err
	}
	return len(workers), nil
}

// ScaleTo creates or destroys machines to reach exactly n workers,
// destroying the oldest-created first when scaling down.
func (d *CloudDriver) ScaleTo(ctx context.Context, n int) error {
	workers, err := d.listMachines(ctx)
	if err != nil {
		return err
	}

	switch diff := n - len(workers); {
	case diff > 0:
		for i := 0; i < diff; i++ {
			if err := d.createMachine(ctx); err != nil {
				return fmt.Errorf("create machine %d/%d: %w", i+1, diff, err)
			}
		}
	case diff < 0:
		sort.Slice(workers, func(i, j int) bool { return workers[i].CreatedAt < workers[j].CreatedAt })
		for i := 0; i < -diff; i++ {
			if err := d.destroyMachine(ctx, workers[i].ID); err != nil {
				return fmt.Errorf("destroy machine %s: %w", workers[i].ID, err)
			}
		}
	}
	return nil
}

func (d *CloudDriver) createMachine(ctx context.Context) error {
	url := fmt.Sprintf("%s/apps/%s/machines", d.BaseURL, d.AppName)
	body, err := json.Marshal(map[string]interface{}{
		"region": d.Region,
		"config": map[string]interface{}{
			"image":    d.WorkerImage,
			"metadata": map[string]string{"role": "worker"},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal create request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build create request: %w", err)
	}
	d.authorize(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("create machine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("create machine: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (d *CloudDriver) destroyMachine(ctx context.Context, id string) error {
	url := fmt.Sprintf("%s/apps/%s/machines/%s", d.BaseURL, d.AppName, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("build destroy request: %w", err)
	}
	d.authorize(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("destroy machine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("destroy machine: unexpected status %d", resp.StatusCode)
	}
	return nil
}
