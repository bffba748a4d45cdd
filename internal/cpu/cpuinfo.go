package cpu

import (
	"strconv"
	"strings"
)

// countPhysicalCores counts distinct (physical id, core id) pairs in
// /proc/cpuinfo content, falling back to the "cpu cores" header.
func countPhysicalCores(content string) int {
	lines := strings.Split(content, "\n")
	coreMap := make(map[string]bool)
	coreCountFromHeader := 0

	var currentPhysicalID, currentCoreID string

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if strings.HasPrefix(line, "cpu cores") && coreCountFromHeader == 0 {
			if cores, err := strconv.Atoi(fieldValue(line)); err == nil {
				coreCountFromHeader = cores
			}
		}

		if strings.HasPrefix(line, "physical id") {
			currentPhysicalID = fieldValue(line)
		}

		if strings.HasPrefix(line, "core id") {
			currentCoreID = fieldValue(line)
		}

		// An empty line closes one logical CPU block
		if line == "" && currentPhysicalID != "" && currentCoreID != "" {
			coreMap[currentPhysicalID+":"+currentCoreID] = true
			currentPhysicalID = ""
			currentCoreID = ""
		}
	}

	if currentPhysicalID != "" && currentCoreID != "" {
		coreMap[currentPhysicalID+":"+currentCoreID] = true
	}

	if len(coreMap) > 0 {
		return len(coreMap)
	}
	return coreCountFromHeader
}

func fieldValue(line string) string {
	_, value, ok := strings.Cut(line, ":")
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
