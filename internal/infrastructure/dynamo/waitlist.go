package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-waitlist-api/internal/domain"
)

// WaitlistRepo provides typed DynamoDB operations for the waitlist table.
// PK: email (normalized).
type WaitlistRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewWaitlistRepo(client *dynamodb.Client, tableName string) *WaitlistRepo {
	return &WaitlistRepo{client: client, tableName: tableName}
}

// MarkVerified inserts the verified record for the entry's email.
// The conditional put makes "check membership, then insert" atomic: if the
// email is already present the write is rejected and domain.ErrConflict is
// returned, so two concurrent verifications of the same address collapse to
// a single successful transition.
func (r *WaitlistRepo) MarkVerified(ctx context.Context, e *domain.WaitlistEntry) error {
	item, err := attributevalue.MarshalMap(e)
	if err != nil {
		return fmt.Errorf("marshal waitlist entry: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(email)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("email already verified: %w", domain.ErrConflict)
		}
		return err
	}
	return nil
}

// Get returns the verified record for an email, or domain.ErrNotFound.
func (r *WaitlistRepo) Get(ctx context.Context, email string) (*domain.WaitlistEntry, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("email", email),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("waitlist entry not found: %w", domain.ErrNotFound)
	}
	var e domain.WaitlistEntry
	if err := attributevalue.UnmarshalMap(out.Item, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

// Count scans the table and returns the number of verified entries.
// Paginates through all scan pages; acceptable at waitlist scale.
func (r *WaitlistRepo) Count(ctx context.Context) (int, error) {
	var total int
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.tableName),
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, err
		}
		total += int(out.Count)
		if out.LastEvaluatedKey == nil {
			return total, nil
		}
		startKey = out.LastEvaluatedKey
	}
}
