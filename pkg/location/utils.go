package location

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"googlemaps.github.io/maps"
)

// getWiFiAccessPoints lists nearby access points with nmcli.
func getWiFiAccessPoints(ctx context.Context) ([]maps.WiFiAccessPoint, error) {
	if _, err := exec.LookPath("nmcli"); err != nil {
		return nil, fmt.Errorf("nmcli not found: %w", err)
	}

	output, err := exec.CommandContext(ctx, "nmcli", "-t", "-f", "BSSID,SIGNAL", "dev", "wifi", "list").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run nmcli: %w", err)
	}
	return parseNmcliWiFi(string(output))
}

// parseNmcliWiFi parses terse nmcli output. nmcli escapes the colons inside
// the BSSID as "\:", the last unescaped colon separates the signal column.
func parseNmcliWiFi(output string) ([]maps.WiFiAccessPoint, error) {
	var wifiAPs []maps.WiFiAccessPoint
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		sep := lastUnescapedColon(line)
		if sep < 0 {
			continue
		}
		macAddress := strings.ReplaceAll(line[:sep], `\:`, ":")
		if !isValidMAC(macAddress) {
			continue
		}
		signal, err := strconv.Atoi(strings.TrimSpace(line[sep+1:]))
		if err != nil {
			continue
		}
		wifiAPs = append(wifiAPs, maps.WiFiAccessPoint{
			MACAddress:     macAddress,
			SignalStrength: float64(signal),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan nmcli output: %w", err)
	}
	return wifiAPs, nil
}

func lastUnescapedColon(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == ':' && (i == 0 || s[i-1] != '\\') {
			return i
		}
	}
	return -1
}

var errCellLookupDisabled = errors.New("cell tower lookup disabled")

// getCellTowers reads the serving cell of the given modem with mmcli. A
// negative modemIndex disables the lookup.
func getCellTowers(ctx context.Context, modemIndex int) ([]maps.CellTower, error) {
	if modemIndex < 0 {
		return nil, errCellLookupDisabled
	}
	if _, err := exec.LookPath("mmcli"); err != nil {
		return nil, fmt.Errorf("mmcli not found: %w", err)
	}

	output, err := exec.CommandContext(ctx, "mmcli", "-m", strconv.Itoa(modemIndex), "--location-get", "--output-keyvalue").Output()
	if err != nil {
		return nil, fmt.Errorf("failed to run mmcli for modem %d: %w", modemIndex, err)
	}
	return parseMmcliCell(string(output))
}

// parseMmcliCell extracts the 3GPP location keys from mmcli key-value output.
// LAC and cell id are reported in hex.
func parseMmcliCell(output string) ([]maps.CellTower, error) {
	var cellTower maps.CellTower
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "modem.location.3gpp.mcc":
			if mcc, err := strconv.Atoi(value); err == nil {
				cellTower.MobileCountryCode = mcc
			}
		case "modem.location.3gpp.mnc":
			if mnc, err := strconv.Atoi(value); err == nil {
				cellTower.MobileNetworkCode = mnc
			}
		case "modem.location.3gpp.lac":
			if lac, err := strconv.ParseInt(value, 16, 64); err == nil {
				cellTower.LocationAreaCode = int(lac)
			}
		case "modem.location.3gpp.cid":
			if cid, err := strconv.ParseInt(value, 16, 64); err == nil {
				cellTower.CellID = int(cid)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan mmcli output: %w", err)
	}

	if cellTower.MobileCountryCode == 0 || cellTower.MobileNetworkCode == 0 {
		return nil, errors.New("incomplete cell tower data")
	}
	return []maps.CellTower{cellTower}, nil
}

// isValidMAC checks if the MAC address is in a valid format (e.g., "00:14:22:01:23:45").
func isValidMAC(mac string) bool {
	parts := strings.Split(mac, ":")
	if len(parts) != 6 {
		return false
	}
	for _, part := range parts {
		if len(part) != 2 {
			return false
		}
		if _, err := strconv.ParseUint(part, 16, 8); err != nil {
			return false
		}
	}
	return true
}
