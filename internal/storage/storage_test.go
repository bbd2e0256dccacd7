package storage

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adri-engine/adri/internal/metadata"
	"github.com/adri-engine/adri/internal/models"
	"github.com/adri-engine/adri/pkg/logger"
)

func storedReport() *models.Report {
	return &models.Report{
		ID:          "deadbeefcafe0123",
		Source:      "orders.csv",
		Mode:        models.ModeDiscovery,
		ADRIVersion: "1.0.0",
		DimensionScores: []models.DimensionScore{
			{Dimension: "validity", Score: 18.5, MaxScore: 20, Weight: 1, Findings: []models.Finding{}},
		},
		Summary:      models.ReportSummary{BySeverity: map[string]int{}},
		OverallScore: 92.5,
	}
}

func TestReportFileName(t *testing.T) {
	r := storedReport()
	assert.Equal(t, "adri-report-deadbeefcafe0123.json", ReportFileName(r, "json"))
	assert.Equal(t, "adri-report-deadbeefcafe0123.md", ReportFileName(r, "markdown"))
	assert.Equal(t, "adri-report-deadbeefcafe0123.txt", ReportFileName(r, "terminal"))
}

func TestSaveReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	path, err := SaveReport(dir, storedReport(), "json", logger.NewMockLogger())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded models.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "deadbeefcafe0123", decoded.ID)
	assert.Equal(t, 92.5, decoded.OverallScore)
}

func TestSaveReportUnknownFormat(t *testing.T) {
	_, err := SaveReport(t.TempDir(), storedReport(), "pdf", logger.NewMockLogger())
	assert.Error(t, err)
}

func TestSidecarWriter(t *testing.T) {
	dir := t.TempDir()
	writer := NewSidecarWriter(dir)

	artifact := &metadata.Artifact{
		Dimension: "completeness",
		Comment:   "test artifact",
		Facts:     []metadata.Fact{{Name: "populated.amount", Value: 0.75, Confidence: 1.0}},
	}

	path, err := writer.WriteArtifact("orders.csv", artifact)
	require.NoError(t, err)
	assert.Equal(t, metadata.SidecarPath(dir, "orders.csv", "completeness"), path)
	assert.True(t, metadata.Detect(dir, "orders.csv"))
}

type fakeS3 struct {
	putErr error
	bucket string
	key    string
	body   []byte
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.bucket = *params.Bucket
	f.key = *params.Key
	f.body, _ = io.ReadAll(params.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Publish(t *testing.T) {
	fake := &fakeS3{}
	publisher := NewS3PublisherWithClient(fake, "quality-reports", "adri", logger.NewMockLogger())

	key, err := publisher.Publish(context.Background(), storedReport())
	require.NoError(t, err)

	assert.Equal(t, "adri/orders.csv/adri-report-deadbeefcafe0123.json", key)
	assert.Equal(t, "quality-reports", fake.bucket)
	assert.Equal(t, key, fake.key)

	var decoded models.Report
	require.NoError(t, json.Unmarshal(fake.body, &decoded))
	assert.Equal(t, "deadbeefcafe0123", decoded.ID)
}

func TestS3PublishError(t *testing.T) {
	fake := &fakeS3{putErr: errors.New("access denied")}
	publisher := NewS3PublisherWithClient(fake, "quality-reports", "", logger.NewMockLogger())

	_, err := publisher.Publish(context.Background(), storedReport())
	assert.ErrorContains(t, err, "access denied")
}
