package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

var maxDevices int = 2000
var httpHostPort string = "127.0.0.1:1080"

var rnd *rand.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))

type device struct {
	Serial string
	Secret string
}

// Run the server with THERMO_REGISTER_WINDOW_CAP raised well above
// maxDevices, otherwise the per-IP registration window rejects the
// setup phase.
func main() {
	devices := make([]device, maxDevices)
	for i := 0; i < maxDevices; i++ {
		devices[i].Serial = uuid.NewString()
	}
	fmt.Printf("generated %v device serials\n", maxDevices)

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", httpHostPort))
	if err != nil {
		log.Fatal("Failed to connect to HTTP server:", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		log.Fatal("HTTP server not available")
	}

	fmt.Printf("http server verified\n")

	var startTime time.Time
	var usedTime time.Duration

	startTime = time.Now()
	wg := sync.WaitGroup{}
	for i := 0; i < maxDevices; i++ {
		i := i
		wg.Add(1)
		go func() {
			devices[i].Secret = registerDevice(devices[i].Serial, i)
			fmt.Printf("\rregistered device %v", i)
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\rregistered %v devices: used time=%v seconds, throughput=%v action/second\n",
		maxDevices, usedTime.Seconds(), float64(maxDevices)/usedTime.Seconds(),
	)

	startTime = time.Now()
	wg = sync.WaitGroup{}
	for i := 0; i < maxDevices; i++ {
		i := i
		wg.Add(1)
		go func() {
			doAction(devices[i])
			wg.Done()
		}()
	}
	wg.Wait()
	usedTime = time.Since(startTime)

	fmt.Printf(
		"\n\rdid actions for %v devices: used time=%v seconds, throughput=%v action/second\n",
		maxDevices, usedTime.Seconds(), float64(maxDevices*3)/usedTime.Seconds(),
	)
}

func rndFloat64(min, max float64, decimal int) float64 {
	val := min + rnd.Float64()*(max-min)
	multiplier := float64(math.Pow10(decimal))
	return float64(math.Round(float64(val)*float64(multiplier))) / multiplier
}

func registerDevice(serial string, index int) string {
	payload := map[string]string{
		"owner_id": fmt.Sprintf("bench-owner-%03d", index%50),
		"serial":   serial,
		"name":     fmt.Sprintf("bench device %v", index),
	}
	jsonData, _ := json.Marshal(payload)

	resp, err := http.Post(fmt.Sprintf("http://%s/devices/register", httpHostPort), "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		panic(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		panic(fmt.Sprintf("registration failed with status %v", resp.StatusCode))
	}

	var issued struct {
		Secret string `json:"secret"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&issued); err != nil {
		panic(err)
	}
	return issued.Secret
}

func doAction(dev device) {
	actions := []func(){
		genUpsertSettingsAction(dev),
		genGetAlertsAction(dev),
		genPostTelemetryAction(dev),
	}
	actionNames := []string{
		"UpsertSettings",
		"GetAlerts",
		"PostTelemetry",
	}
	rnd.Shuffle(len(actions), func(i, j int) {
		actions[i], actions[j] = actions[j], actions[i]
		actionNames[i], actionNames[j] = actionNames[j], actionNames[i]
	})
	for index, action := range actions {
		action()
		fmt.Printf("\rexecuted action %v for device %v", actionNames[index], dev.Serial)
		time.Sleep(time.Duration(100+rnd.Int31n(1000)) * time.Millisecond)
	}
}

func genUpsertSettingsAction(dev device) func() {
	return func() {
		payload := map[string]any{
			"enabled":          true,
			"high_enabled":     true,
			"high_threshold_c": rndFloat64(25.0, 35.0, 2),
			"low_enabled":      true,
			"low_threshold_c":  rndFloat64(5.0, 15.0, 2),
			"cooldown_minutes": 30,
		}
		jsonData, _ := json.Marshal(payload)

		req, _ := http.NewRequest(http.MethodPut, fmt.Sprintf("http://%s/devices/%s/alerts/settings", httpHostPort, dev.Serial), bytes.NewBuffer(jsonData))
		req.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("\nerror: %v\n", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			fmt.Printf("\nresponse status code != 200: %v\n", resp)
		}
	}
}

func genPostTelemetryAction(dev device) func() {
	return func() {
		payload := map[string]any{
			"mode":             "HEAT",
			"setpoint_c":       rndFloat64(18.0, 24.0, 1),
			"temp_inside_c":    rndFloat64(12.0, 38.0, 2),
			"temp_outside_c":   rndFloat64(-10.0, 35.0, 2),
			"humidity_percent": rndFloat64(20.0, 80.0, 1),
			"output":           "HEAT_ON",
			"timestamp":        time.Now().Format(time.RFC3339),
		}
		jsonData, _ := json.Marshal(payload)

		req, _ := http.NewRequest(http.MethodPost, fmt.Sprintf("http://%s/telemetry/ingest", httpHostPort), bytes.NewBuffer(jsonData))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", fmt.Sprintf("Device %s:%s", dev.Serial, dev.Secret))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Printf("\nerror: %v\n", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			fmt.Printf("\nresponse status code != 200: %v\n", resp)
		}
	}
}

func genGetAlertsAction(dev device) func() {
	return func() {
		resp, err := http.Get(fmt.Sprintf("http://%s/devices/%s/alerts", httpHostPort, dev.Serial))
		if err != nil {
			fmt.Printf("\nerror: %v\n", err)
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			fmt.Printf("\nresponse status code != 200: %v\n", resp)
		}
	}
}
