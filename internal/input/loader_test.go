package input

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const sampleCSV = `ID,CompanyName,WebsiteURL,Country
1,Acme Corp,https://acme.com,US
2,Beta GmbH,beta.de,DE
3,,missing-name.com,FR
4,Gamma Inc,,US
5,Delta LLC,delta.io,GB
`

func TestLoad(t *testing.T) {
	path := writeCSV(t, sampleCSV)

	entities, err := Load(path, Options{})
	require.NoError(t, err)
	require.Len(t, entities, 4)

	require.Equal(t, "1", entities[0].ID)
	require.Equal(t, "Acme Corp", entities[0].DisplayName)
	require.Equal(t, "https://acme.com", entities[0].PrimaryURL)
	require.Equal(t, "US", entities[0].Country)

	// The blank-name row is dropped, the blank-URL row is kept.
	require.Equal(t, "4", entities[2].ID)
	require.Empty(t, entities[2].PrimaryURL)
}

func TestLoadWithIDFilter(t *testing.T) {
	path := writeCSV(t, sampleCSV)

	entities, err := Load(path, Options{IDs: []string{"2", "5"}})
	require.NoError(t, err)
	require.Len(t, entities, 2)
	require.Equal(t, "2", entities[0].ID)
	require.Equal(t, "5", entities[1].ID)
}

func TestLoadWithTopN(t *testing.T) {
	path := writeCSV(t, sampleCSV)

	entities, err := Load(path, Options{TopN: 2})
	require.NoError(t, err)
	require.Len(t, entities, 2)
	require.Equal(t, "1", entities[0].ID)
	require.Equal(t, "2", entities[1].ID)
}

func TestLoadSecondaryURLColumn(t *testing.T) {
	path := writeCSV(t, `ID,CompanyName,WebsiteURL,SecondaryURL,Country
1,Acme Corp,acme.com,acme.org,US
`)

	entities, err := Load(path, Options{})
	require.NoError(t, err)
	require.Len(t, entities, 1)
	require.Equal(t, "acme.org", entities[0].SecondaryURL)
}

func TestLoadMissingRequiredColumn(t *testing.T) {
	path := writeCSV(t, "ID,CompanyName,Country\n1,Acme,US\n")

	_, err := Load(path, Options{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "WebsiteURL")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	require.Error(t, err)
}

func TestLoadHeaderCaseInsensitive(t *testing.T) {
	path := writeCSV(t, "id,companyname,websiteurl,country\n1,Acme,acme.com,US\n")

	entities, err := Load(path, Options{})
	require.NoError(t, err)
	require.Len(t, entities, 1)
}
