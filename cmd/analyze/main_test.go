package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pefman/eots-battle/internal/api"
	"github.com/pefman/eots-battle/internal/models"
)

const inlineScenario = `
name: Midway
intel_condition: ambush
reaction_player: allied
air_power: 1942
allied:
  - id: 1
    unit_name: CV Yorktown
    nationality: US
    unit_type: Air
    attack_front: 4
    attack_back: 2
    defense: 2
    move_range: 4
    is_in_battle_hex: true
japan:
  - id: 2
    unit_name: CV Kaga
    nationality: Japan
    unit_type: Air
    attack_front: 5
    attack_back: 2
    defense: 2
    move_range: 4
    is_in_battle_hex: true
`

const catalogScenario = `
intel_condition: intercept
reaction_player: japan
allied_ids: [0]
japan_ids: [1]
`

const unitCSV = `nationality,unit_type,branch,attack_front,defense,attack_back,move_range,move_range_extended,extended_limit,unit_name
US,Naval,Navy,4,2,2,,,False,BB Washington
Japan,Naval,Navy,3,1,1,,,False,CA Chokai
`

func write(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestRunLocalInline(t *testing.T) {
	t.Setenv("EOTS_API_BASE", "")
	var out bytes.Buffer
	err := run(context.Background(), []string{"-scenario", write(t, "midway.yaml", inlineScenario), "-rows"}, &out)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Midway")
	assert.Contains(t, text, "intel ambush, allied reacting, air power 1942, DRM allied +4 japan +0")
	assert.Contains(t, text, "CV Yorktown")
	assert.Contains(t, text, "CV Kaga")
	assert.Contains(t, text, "Win probability: allied ")
	assert.Contains(t, text, "allied_result")
	assert.Contains(t, text, "a_die")
}

func TestRunLocalCatalog(t *testing.T) {
	t.Setenv("EOTS_API_BASE", "")
	var out bytes.Buffer
	err := run(context.Background(), []string{
		"-scenario", write(t, "battle.yaml", catalogScenario),
		"-units", write(t, "unit_data.csv", unitCSV),
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "BB Washington")
	assert.Contains(t, out.String(), "CA Chokai")
	assert.NotContains(t, out.String(), "a_die")
}

func TestRunErrors(t *testing.T) {
	t.Setenv("EOTS_API_BASE", "")
	var out bytes.Buffer
	assert.Error(t, run(context.Background(), nil, &out))

	err := run(context.Background(), []string{
		"-scenario", write(t, "battle.yaml", catalogScenario),
		"-units", filepath.Join(t.TempDir(), "missing.csv"),
	}, &out)
	assert.Error(t, err)
}

func TestRunRemote(t *testing.T) {
	var analyzed models.AnalyzeRequest
	mux := http.NewServeMux()
	mux.HandleFunc("/api/units/0", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.UnitRecord{ID: 0, Nationality: "US", UnitType: "Naval", AttackFront: 4, AttackBack: 2, Defense: 2, UnitName: "BB Washington"})
	})
	mux.HandleFunc("/api/units/1", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(models.UnitRecord{ID: 1, Nationality: "Japan", UnitType: "Naval", AttackFront: 3, AttackBack: 1, Defense: 1, UnitName: "CA Chokai"})
	})
	mux.HandleFunc("/api/battle/analyze", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&analyzed); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_, rows, err := analyzeLocal("", analyzed)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(api.AnalyzeResponse{ID: "r1", Rows: rows})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	var out bytes.Buffer
	err := run(context.Background(), []string{"-scenario", write(t, "battle.yaml", catalogScenario), "-remote", srv.URL}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "CA Chokai")
	require.Len(t, analyzed.Allied, 1)
	assert.Empty(t, analyzed.AlliedIDs)
}
