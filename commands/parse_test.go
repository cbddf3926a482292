package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"cattle-metrics-scraper/models"
	"cattle-metrics-scraper/services"
)

const textDump = `Cattle Market Summary
Select Row
1
12,400
72%
$150
412
+2c
-1%
+3pp
-$50
Select Row
2
9,876
68%
-$20
410
-4c
+12%
-1pp
$10
Select Row
3
11,002
70%
$35
414
+1c
+3%
+2pp
$5
Select Row
4
10,650
68%
$30
413
0c
-2%
0pp
-$5
`

const gridDump = `<div role="grid">
<div role="row"><div role="columnheader">Head</div></div>
<div role="row"><div role="gridcell">1,234</div><div role="gridcell">55%</div><div role="gridcell">$200</div><div role="gridcell">410</div></div>
<div role="row"><div role="gridcell">2,345</div><div role="gridcell">60%</div><div role="gridcell">-$15</div><div role="gridcell">405</div></div>
<div role="row"><div role="gridcell">3,456</div><div role="gridcell">58%</div><div role="gridcell">$0</div><div role="gridcell">400</div></div>
<div role="row"><div role="gridcell">4,567</div><div role="gridcell">61%</div><div role="gridcell">$25</div><div role="gridcell">398</div></div>
</div>`

func runParse(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(append([]string{"parse", "--previous", "", "--summary=false"}, args...))
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestParseTextFile(t *testing.T) {
	out, _, err := runParse(t, "", "--mode", "text", writeFile(t, "dump.txt", textDump))
	require.NoError(t, err)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	require.Equal(t, "12400", snap.ThisWeek.TotalHead)
	require.Equal(t, "-50", snap.ThisWeek.VORChange)
	require.Equal(t, "4", snap.ThreeWeeksAgo.Index)
}

func TestParseGridFromStdin(t *testing.T) {
	out, _, err := runParse(t, gridDump, "--mode", "grid")
	require.NoError(t, err)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	require.Equal(t, models.WeekRecord{
		Index: "1", TotalHead: "1234", ClearanceRate: "55", AmountOverReserve: "200", AYCIDW: "410",
	}, snap.ThisWeek)
}

func TestParseComparesWithPrevious(t *testing.T) {
	prevPath := filepath.Join(t.TempDir(), "metrics.json")
	first, _, err := runParse(t, textDump, "--mode", "text")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(prevPath, []byte(first), 0644))

	changedDump := strings.Replace(textDump, "12,400", "13,050", 1)
	_, stderr, err := runParse(t, changedDump, "--mode", "text", "--previous", prevPath)
	require.NoError(t, err)
	require.Contains(t, stderr, "changed=true")

	_, stderr, err = runParse(t, textDump, "--mode", "text", "--previous", prevPath)
	require.NoError(t, err)
	require.Contains(t, stderr, "changed=false")
}

func TestParseRowCountMismatch(t *testing.T) {
	threeRows := textDump[:strings.LastIndex(textDump, "Select Row")]
	out, _, err := runParse(t, threeRows, "--mode", "text")
	require.ErrorIs(t, err, services.ErrRowCountMismatch)
	require.Empty(t, out)
}
