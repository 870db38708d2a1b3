package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDB attributes. The table needs a string hash key named PK; TTL, when
// enabled on the table, reads the ttl attribute.
const (
	AttrPK         = "PK"
	AttrEntityType = "entity_type"
	AttrValue      = "value"
	AttrUpdatedAt  = "updated_at"
	AttrTTL        = "ttl"

	EntityTypeFormData = "MultiPageFormData"
)

// dynamoCacheItem is the stored shape of one cache entry
type dynamoCacheItem struct {
	PK         string `dynamodbav:"PK"`
	EntityType string `dynamodbav:"entity_type"`
	Value      []byte `dynamodbav:"value"`
	UpdatedAt  string `dynamodbav:"updated_at"`
	TTL        int64  `dynamodbav:"ttl,omitempty"`
}

// DynamoDBCache implements CacheClient on a DynamoDB table
type DynamoDBCache struct {
	client    DynamoDBClient
	tableName string
	ttl       time.Duration
	now       func() time.Time
}

// NewDynamoDBCache creates a DynamoDB-backed cache client. A zero ttl writes
// no ttl attribute.
func NewDynamoDBCache(client DynamoDBClient, tableName string, ttl time.Duration) *DynamoDBCache {
	return &DynamoDBCache{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
		now:       time.Now,
	}
}

var _ CacheClient = (*DynamoDBCache)(nil)

func (d *DynamoDBCache) Name() string {
	return "dynamodb"
}

// Ping checks that the table exists and is reachable
func (d *DynamoDBCache) Ping(ctx context.Context) error {
	_, err := d.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(d.tableName),
	})
	if err != nil {
		return fmt.Errorf("failed to describe table %s: %w", d.tableName, err)
	}
	return nil
}

func (d *DynamoDBCache) Set(ctx context.Context, key string, value []byte) error {
	now := d.now()
	entry := dynamoCacheItem{
		PK:         key,
		EntityType: EntityTypeFormData,
		Value:      value,
		UpdatedAt:  now.UTC().Format(time.RFC3339),
	}
	if d.ttl > 0 {
		entry.TTL = now.Add(d.ttl).Unix()
	}

	item, err := attributevalue.MarshalMap(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache item: %w", err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put cache item: %w", err)
	}

	return nil
}

func (d *DynamoDBCache) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.tableName),
		ConsistentRead: aws.Bool(true),
		Key: map[string]types.AttributeValue{
			AttrPK: &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get cache item: %w", err)
	}

	if result.Item == nil {
		return nil, ErrCacheMiss
	}

	var entry dynamoCacheItem
	if err := attributevalue.UnmarshalMap(result.Item, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache item: %w", err)
	}

	// DynamoDB deletes expired items lazily; treat them as gone.
	if entry.TTL > 0 && d.now().Unix() >= entry.TTL {
		return nil, ErrCacheMiss
	}

	return entry.Value, nil
}

func (d *DynamoDBCache) Remove(ctx context.Context, key string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			AttrPK: &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to delete cache item: %w", err)
	}

	return nil
}
