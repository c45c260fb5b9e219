package app

import (
	"context"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gridxml/adapters/filecipher"
	"gridxml/domain/convert"
	"gridxml/internal/errors"
)

// recordingSink captures audit records for assertions
type recordingSink struct {
	successes int
	failures  int
	lastCode  string
}

func (r *recordingSink) Success(operation, actor string, detail map[string]any) {
	r.successes++
}

func (r *recordingSink) Failure(operation, actor string, err error, detail map[string]any) {
	r.failures++
	r.lastCode = errors.GetCode(err)
}

type xmlNode struct {
	XMLName  xml.Name
	Text     string    `xml:",chardata"`
	Children []xmlNode `xml:",any"`
}

func writeFixture(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "input.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func newTestService(sink *recordingSink) *ConversionService {
	return NewConversionService(filecipher.New("test-secret"), sink)
}

func TestRunEndToEnd(t *testing.T) {
	inputPath := writeFixture(t, [][]interface{}{
		{"ID", "Amount"},
		{"1", "10.50"},
		{"2", "20.00"},
	})
	outputPath := filepath.Join(t.TempDir(), "out.xml")

	sink := &recordingSink{}
	summary, err := newTestService(sink).Run(context.Background(), ConversionRequest{
		InputPath:  inputPath,
		OutputPath: outputPath,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, summary.RowsProcessed)
	assert.Equal(t, outputPath, summary.OutputPath)
	assert.False(t, summary.Encrypted)
	assert.GreaterOrEqual(t, summary.ConversionTimeMs, int64(0))
	assert.Equal(t, 1, sink.successes)
	assert.Equal(t, 0, sink.failures)

	doc, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	var root xmlNode
	require.NoError(t, xml.Unmarshal(doc, &root))

	require.Len(t, root.Children, 1)
	body := root.Children[0]
	assert.Equal(t, "body", body.XMLName.Local)
	require.Len(t, body.Children, 2)
	first := body.Children[0]
	require.Len(t, first.Children, 2)
	assert.Equal(t, "ID", first.Children[0].XMLName.Local)
	assert.Equal(t, "1", first.Children[0].Text)
	assert.Equal(t, "Amount", first.Children[1].XMLName.Local)
	assert.Equal(t, "10.50", first.Children[1].Text)
}

func TestRunWithHeaderFields(t *testing.T) {
	inputPath := writeFixture(t, [][]interface{}{
		{"Name"},
		{"Ann"},
	})
	outputPath := filepath.Join(t.TempDir(), "out.xml")

	sink := &recordingSink{}
	_, err := newTestService(sink).Run(context.Background(), ConversionRequest{
		InputPath:  inputPath,
		OutputPath: outputPath,
		HeaderFields: []convert.HeaderField{
			{Name: "Batch Id", Value: "B-1"},
		},
	})
	require.NoError(t, err)

	doc, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	var root xmlNode
	require.NoError(t, xml.Unmarshal(doc, &root))

	require.Len(t, root.Children, 2)
	assert.Equal(t, "header", root.Children[0].XMLName.Local)
	assert.Equal(t, "Batch_Id", root.Children[0].Children[0].XMLName.Local)
}

func TestRunEncrypts(t *testing.T) {
	inputPath := writeFixture(t, [][]interface{}{
		{"ID"},
		{"1"},
	})
	outputPath := filepath.Join(t.TempDir(), "out.xml")

	cipher := filecipher.New("test-secret")
	sink := &recordingSink{}
	service := NewConversionService(cipher, sink)

	summary, err := service.Run(context.Background(), ConversionRequest{
		InputPath:  inputPath,
		OutputPath: outputPath,
		Encrypt:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, outputPath+".enc", summary.OutputPath)
	assert.True(t, summary.Encrypted)

	// The plaintext file must not survive encryption.
	_, err = os.Stat(outputPath)
	assert.True(t, os.IsNotExist(err))

	decryptedPath := filepath.Join(t.TempDir(), "decrypted.xml")
	require.NoError(t, cipher.DecryptFile(summary.OutputPath, decryptedPath))
	doc, err := os.ReadFile(decryptedPath)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "<body>")
}

func TestRunEmptySheetLeavesNoOutput(t *testing.T) {
	inputPath := writeFixture(t, [][]interface{}{
		{"ID", "Amount"},
	})
	outputPath := filepath.Join(t.TempDir(), "out.xml")

	sink := &recordingSink{}
	_, err := newTestService(sink).Run(context.Background(), ConversionRequest{
		InputPath:  inputPath,
		OutputPath: outputPath,
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeEmptyData, errors.GetCode(err))
	assert.Equal(t, 1, sink.failures)
	assert.Equal(t, errors.CodeEmptyData, sink.lastCode)

	_, err = os.Stat(outputPath)
	assert.True(t, os.IsNotExist(err))
}

func TestRunMissingInput(t *testing.T) {
	sink := &recordingSink{}
	_, err := newTestService(sink).Run(context.Background(), ConversionRequest{
		InputPath:  filepath.Join(t.TempDir(), "missing.xlsx"),
		OutputPath: filepath.Join(t.TempDir(), "out.xml"),
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeFileNotFound, errors.GetCode(err))
	assert.Equal(t, 1, sink.failures)
}

func TestRunSheetNotFound(t *testing.T) {
	inputPath := writeFixture(t, [][]interface{}{
		{"ID"},
		{"1"},
	})

	sink := &recordingSink{}
	_, err := newTestService(sink).Run(context.Background(), ConversionRequest{
		InputPath:  inputPath,
		OutputPath: filepath.Join(t.TempDir(), "out.xml"),
		SheetName:  "DoesNotExist",
	})
	require.Error(t, err)
	assert.Equal(t, errors.CodeSheetNotFound, errors.GetCode(err))
}
