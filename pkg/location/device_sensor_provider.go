package location

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"
	"github.com/tarm/serial"
)

// portOpener opens the serial device. Swapped in tests.
type portOpener func(c *serial.Config) (io.ReadCloser, error)

func openSerialPort(c *serial.Config) (io.ReadCloser, error) {
	return serial.OpenPort(c)
}

// DeviceSensorProvider is responsible for retrieving location data from a GPS device connected via serial port.
type DeviceSensorProvider struct {
	port        string        // Serial port to which the GPS device is connected
	baudRate    int           // Baud rate for the serial communication
	readTimeout time.Duration // Per-read timeout on the port, zero blocks
	open        portOpener
	now         func() time.Time
}

// NewDeviceSensorProvider creates a new instance of DeviceSensorProvider with the specified port and baud rate.
func NewDeviceSensorProvider(port string, baudRate int, readTimeout time.Duration) *DeviceSensorProvider {
	return &DeviceSensorProvider{
		port:        port,
		baudRate:    baudRate,
		readTimeout: readTimeout,
		open:        openSerialPort,
		now:         time.Now,
	}
}

// GetLocation opens the port, reads NMEA output until the first valid GGA fix and closes the port again.
func (d *DeviceSensorProvider) GetLocation(ctx context.Context) (Location, error) {
	s, err := d.open(&serial.Config{Name: d.port, Baud: d.baudRate, ReadTimeout: d.readTimeout})
	if err != nil {
		if errors.Is(err, os.ErrPermission) {
			return Location{}, fmt.Errorf("%w: %s", ErrPermissionDenied, d.port)
		}
		return Location{}, fmt.Errorf("failed to open GPS port %s: %w", d.port, err)
	}
	defer s.Close()

	loc, err := readFix(ctx, s)
	if err != nil {
		return Location{}, err
	}
	loc.Timestamp = d.now()
	return loc, nil
}

// Close is a no-op; the port is only held for the duration of GetLocation.
func (d *DeviceSensorProvider) Close() error {
	return nil
}

// readFix scans NMEA sentences from r and returns the first GGA with a valid fix.
// Corrupted sentences are skipped, serial lines are noisy.
func readFix(ctx context.Context, r io.Reader) (Location, error) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return Location{}, err
		}

		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "$") || !strings.Contains(line, "GGA,") {
			continue
		}

		sentence, err := nmea.Parse(line)
		if err != nil || sentence.DataType() != nmea.TypeGGA {
			continue
		}

		gga, ok := sentence.(nmea.GGA)
		if !ok || gga.FixQuality == nmea.Invalid {
			continue
		}

		return Location{
			Latitude:  gga.Latitude,
			Longitude: gga.Longitude,
			Accuracy:  gga.HDOP, // HDOP stands in for accuracy
		}, nil
	}

	if err := scanner.Err(); err != nil {
		return Location{}, fmt.Errorf("failed to read GPS output: %w", err)
	}

	return Location{}, ErrNoFix
}
