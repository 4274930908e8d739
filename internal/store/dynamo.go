package store

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rs/zerolog/log"
)

// DynamoDB key constants. One partition per uploaded file; sort keys
// distinguish the analysis record from the file-level failure record.
const (
	filePKPrefix = "FILE#"
	skAnalysis   = "ANALYSIS"
	skFailure    = "FAILURE"
)

// DynamoStore implements AnalysisStore on a DynamoDB table, for
// deployments where the status endpoint may be served by a different
// process than the one that ran the renditions.
type DynamoStore struct {
	client    *dynamodb.Client
	tableName string
}

// Compile-time interface check.
var _ AnalysisStore = (*DynamoStore)(nil)

// NewDynamoStore creates a DynamoStore for the given table.
// The client should be initialized from the shared AWS config.
func NewDynamoStore(client *dynamodb.Client, tableName string) *DynamoStore {
	return &DynamoStore{
		client:    client,
		tableName: tableName,
	}
}

// filePK returns the partition key for an uploaded file.
func filePK(filename string) string {
	return filePKPrefix + filename
}

// putItem marshals a record and writes it with PK and SK attributes.
func (s *DynamoStore) putItem(ctx context.Context, pk, sk string, data interface{}) error {
	item, err := attributevalue.MarshalMap(data)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	item["PK"] = &types.AttributeValueMemberS{Value: pk}
	item["SK"] = &types.AttributeValueMemberS{Value: sk}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &s.tableName,
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("PutItem PK=%s SK=%s: %w", pk, sk, err)
	}
	return nil
}

// getItem reads one record into out. Returns false when the item does not exist.
func (s *DynamoStore) getItem(ctx context.Context, pk, sk string, out interface{}) (bool, error) {
	resp, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &s.tableName,
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: pk},
			"SK": &types.AttributeValueMemberS{Value: sk},
		},
	})
	if err != nil {
		return false, fmt.Errorf("GetItem PK=%s SK=%s: %w", pk, sk, err)
	}
	if resp.Item == nil {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(resp.Item, out); err != nil {
		return false, fmt.Errorf("unmarshal PK=%s SK=%s: %w", pk, sk, err)
	}
	return true, nil
}

// GetAnalysis retrieves the analysis record. Returns nil, nil if not found.
func (s *DynamoStore) GetAnalysis(ctx context.Context, filename string) (*AnalysisRecord, error) {
	var record AnalysisRecord
	found, err := s.getItem(ctx, filePK(filename), skAnalysis, &record)
	if err != nil || !found {
		return nil, err
	}
	if record.Processed == nil {
		record.Processed = make(map[string]RenditionResult)
	}
	return &record, nil
}

// PutAnalysis creates or replaces the analysis record.
func (s *DynamoStore) PutAnalysis(ctx context.Context, filename string, record *AnalysisRecord) error {
	if err := s.putItem(ctx, filePK(filename), skAnalysis, record); err != nil {
		return err
	}
	log.Debug().
		Str("filename", filename).
		Int("processed", len(record.Processed)).
		Msg("Analysis record written to DynamoDB")
	return nil
}

// GetFailure retrieves the file-level failure record. Returns nil, nil if not found.
func (s *DynamoStore) GetFailure(ctx context.Context, filename string) (*FailureRecord, error) {
	var failure FailureRecord
	found, err := s.getItem(ctx, filePK(filename), skFailure, &failure)
	if err != nil || !found {
		return nil, err
	}
	return &failure, nil
}

// PutFailure creates or replaces the file-level failure record.
func (s *DynamoStore) PutFailure(ctx context.Context, filename string, failure *FailureRecord) error {
	return s.putItem(ctx, filePK(filename), skFailure, failure)
}
