package sdf

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// record builds one well-formed record body with the given id.
func record(id string) string {
	return strings.Join([]string{
		id + " molecule",
		"  generator",
		"",
		"  2  1  0  0  0  0  0  0  0  0999 V2000",
		"M  END",
		"> <DATABASE_ID>",
		id,
		"",
		"$$$$",
	}, "\n") + "\n"
}

func collect(t *testing.T, input string) ([]Record, []Malformed) {
	t.Helper()
	var recs []Record
	var bad []Malformed
	n, err := Scan(strings.NewReader(input), "test.sdf",
		func(r Record) error { recs = append(recs, r); return nil },
		func(m Malformed) { bad = append(bad, m) })
	require.NoError(t, err)
	require.Equal(t, len(recs), n)
	return recs, bad
}

func TestScan_ValidRecords(t *testing.T) {
	input := record("MOL000001") + record("MOL000002") + record("MOL000003")
	recs, bad := collect(t, input)

	require.Len(t, recs, 3)
	assert.Empty(t, bad)
	assert.Equal(t, "MOL000001", recs[0].ID)
	assert.Equal(t, "MOL000002", recs[1].ID)
	assert.Equal(t, "MOL000003", recs[2].ID)
	for i, r := range recs {
		assert.Equal(t, i, r.Index, "records must be indexed in corpus order")
		assert.Equal(t, "test.sdf", r.Source)
	}
}

func TestScan_PayloadIsVerbatim(t *testing.T) {
	input := record("MOL000001")
	recs, _ := collect(t, input)
	require.Len(t, recs, 1)
	assert.Equal(t, input, string(recs[0].Data), "payload must include the terminator, unmodified")
}

func TestScan_MissingIDRejectedOrderPreserved(t *testing.T) {
	noID := strings.Join([]string{
		"anonymous molecule",
		"M  END",
		"$$$$",
	}, "\n") + "\n"
	input := record("MOL000001") + noID + record("MOL000002")
	recs, bad := collect(t, input)

	require.Len(t, recs, 2)
	require.Len(t, bad, 1)
	assert.Equal(t, "DATABASE_ID not found", bad[0].Reason)
	// The rejection must not disturb the indices of the records around it.
	assert.Equal(t, 0, recs[0].Index)
	assert.Equal(t, 1, recs[1].Index)
	assert.Equal(t, "MOL000002", recs[1].ID)
}

func TestScan_EmptyIDValueRejected(t *testing.T) {
	blankID := strings.Join([]string{
		"molecule",
		"M  END",
		"> <DATABASE_ID>",
		"",
		"$$$$",
	}, "\n") + "\n"
	recs, bad := collect(t, blankID)
	assert.Empty(t, recs)
	require.Len(t, bad, 1)
}

func TestScan_TruncatedTrailingFragment(t *testing.T) {
	input := record("MOL000001") + "dangling molecule\nM  END\n"
	recs, bad := collect(t, input)

	require.Len(t, recs, 1)
	require.Len(t, bad, 1)
	assert.Equal(t, "truncated record (missing terminator)", bad[0].Reason)
}

func TestScan_TrailingBlankLinesAreNotAFragment(t *testing.T) {
	input := record("MOL000001") + "\n\n"
	recs, bad := collect(t, input)
	assert.Len(t, recs, 1)
	assert.Empty(t, bad)
}

func TestScan_EmitErrorStopsScan(t *testing.T) {
	input := record("MOL000001") + record("MOL000002")
	boom := errors.New("disk full")
	calls := 0
	n, err := Scan(strings.NewReader(input), "test.sdf",
		func(Record) error { calls++; return boom },
		func(Malformed) {})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, n)
}

func TestScan_StartLineTracksRecords(t *testing.T) {
	recs, _ := collect(t, record("MOL000001")+record("MOL000002"))
	require.Len(t, recs, 2)
	assert.Equal(t, 1, recs[0].Line)
	assert.Equal(t, 10, recs[1].Line, "second record starts right after the first terminator")
}

func TestExtractDatabaseID(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  string
	}{
		{"present", []string{"> <DATABASE_ID>", "MOL42"}, "MOL42"},
		{"surrounding whitespace", []string{"  > <DATABASE_ID>  ", "  MOL42  "}, "MOL42"},
		{"absent", []string{"> <LOGP>", "3.4"}, ""},
		{"tag at end of payload", []string{"> <DATABASE_ID>"}, ""},
		{"empty value", []string{"> <DATABASE_ID>", "   "}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractDatabaseID(tt.lines))
		})
	}
}

func TestOpen_PlainAndGzip(t *testing.T) {
	dir := t.TempDir()
	body := record("MOL000001")

	plain := filepath.Join(dir, "corpus.sdf")
	require.NoError(t, os.WriteFile(plain, []byte(body), 0o644))

	zipped := filepath.Join(dir, "corpus.sdf.gz")
	f, err := os.Create(zipped)
	require.NoError(t, err)
	gz := gzip.NewWriter(f)
	_, err = gz.Write([]byte(body))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
	require.NoError(t, f.Close())

	for _, path := range []string{plain, zipped} {
		src, err := Open(path)
		require.NoError(t, err, path)
		var recs []Record
		_, err = Scan(src, path,
			func(r Record) error { recs = append(recs, r); return nil },
			func(Malformed) {})
		require.NoError(t, err, path)
		require.NoError(t, src.Close())
		require.Len(t, recs, 1, path)
		assert.Equal(t, "MOL000001", recs[0].ID, path)
	}
}

func TestOpen_Missing(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.sdf"))
	assert.Error(t, err)
}
