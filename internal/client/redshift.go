// Package client implements the statement client on the Redshift Data API.
package client

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/redshiftdata"
	rstypes "github.com/aws/aws-sdk-go-v2/service/redshiftdata/types"
	"golang.org/x/time/rate"

	"rsbench/internal/config"
	"rsbench/internal/domain"
)

// sessionKeepAliveSeconds keeps the Data API session alive between chain
// steps so later steps observe earlier steps' session-local objects.
const sessionKeepAliveSeconds = 180

// DataAPI is the slice of the Redshift Data API the client depends on.
type DataAPI interface {
	ExecuteStatement(ctx context.Context, in *redshiftdata.ExecuteStatementInput,
		optFns ...func(*redshiftdata.Options)) (*redshiftdata.ExecuteStatementOutput, error)
	DescribeStatement(ctx context.Context, in *redshiftdata.DescribeStatementInput,
		optFns ...func(*redshiftdata.Options)) (*redshiftdata.DescribeStatementOutput, error)
	GetStatementResult(ctx context.Context, in *redshiftdata.GetStatementResultInput,
		optFns ...func(*redshiftdata.Options)) (*redshiftdata.GetStatementResultOutput, error)
}

var _ domain.StatementClient = (*RedshiftData)(nil)

// RedshiftData submits statements through the Redshift Data API and polls
// their status. All calls go through an optional client-side rate limiter to
// stay under the Data API request quota.
type RedshiftData struct {
	api     DataAPI
	target  *config.Target
	limiter *rate.Limiter
	logger  *slog.Logger
}

// New builds a RedshiftData client from the ambient AWS credential chain,
// overridden by the target's region and optional static credentials.
func New(ctx context.Context, target *config.Target, logger *slog.Logger) (*RedshiftData, error) {
	var optFns []func(*awsconfig.LoadOptions) error
	if target.Region != "" {
		optFns = append(optFns, awsconfig.WithRegion(target.Region))
	}
	if target.AccessKeyID != "" {
		optFns = append(optFns, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(target.AccessKeyID, target.SecretAccessKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, optFns...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return NewWithAPI(redshiftdata.NewFromConfig(awsCfg), target, logger), nil
}

// NewWithAPI builds a client on a pre-constructed Data API implementation.
func NewWithAPI(api DataAPI, target *config.Target, logger *slog.Logger) *RedshiftData {
	var limiter *rate.Limiter
	if target.APIRateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(target.APIRateLimit), 1)
	}
	return &RedshiftData{api: api, target: target, limiter: limiter, logger: logger}
}

// Submit sends one statement. The first submit of a chain opens a Data API
// session and records its id on the Session; later submits reuse the session
// so temp objects stay visible across the chain.
func (c *RedshiftData) Submit(ctx context.Context, sess *domain.Session, sql string) (string, error) {
	if err := c.wait(ctx); err != nil {
		return "", domain.ErrSubmit("rate limit wait: %v", err)
	}

	in := &redshiftdata.ExecuteStatementInput{
		Sql:                     aws.String(sql),
		SessionKeepAliveSeconds: aws.Int32(sessionKeepAliveSeconds),
	}
	if sess.ID != "" {
		in.SessionId = aws.String(sess.ID)
	} else {
		in.Database = aws.String(c.target.DatabaseName)
		in.SecretArn = aws.String(c.target.CredentialsRef)
		if c.target.EnvironmentType == config.EnvProvisioned {
			in.ClusterIdentifier = aws.String(c.target.ClusterOrWorkgroup)
		} else {
			in.WorkgroupName = aws.String(c.target.ClusterOrWorkgroup)
		}
	}

	out, err := c.api.ExecuteStatement(ctx, in)
	if err != nil {
		return "", domain.ErrSubmit("execute statement: %v", err)
	}
	if sess.ID == "" {
		sess.ID = aws.ToString(out.SessionId)
	}
	return aws.ToString(out.Id), nil
}

// Poll fetches the current status of a statement. The Data API reports the
// duration in nanoseconds.
func (c *RedshiftData) Poll(ctx context.Context, id string) (*domain.StatementStatus, error) {
	if err := c.wait(ctx); err != nil {
		return nil, domain.ErrPoll("rate limit wait: %v", err)
	}

	out, err := c.api.DescribeStatement(ctx, &redshiftdata.DescribeStatementInput{
		Id: aws.String(id),
	})
	if err != nil {
		return nil, domain.ErrPoll("describe statement %s: %v", id, err)
	}

	st := &domain.StatementStatus{
		Status:       domain.StepStatus(out.Status),
		CreatedAt:    aws.ToTime(out.CreatedAt),
		UpdatedAt:    aws.ToTime(out.UpdatedAt),
		Duration:     time.Duration(out.Duration),
		HasResultSet: aws.ToBool(out.HasResultSet),
		ResultRows:   out.ResultRows,
		ResultSize:   out.ResultSize,
		QueryString:  aws.ToString(out.QueryString),
		Error:        aws.ToString(out.Error),
	}
	if out.RedshiftQueryId != 0 {
		st.ExternalQueryID = strconv.FormatInt(out.RedshiftQueryId, 10)
	}
	return st, nil
}

// FetchResult retrieves the first page of a finished statement's result set
// with all field values stringified for display.
func (c *RedshiftData) FetchResult(ctx context.Context, id string) (*domain.ResultSet, error) {
	if err := c.wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	out, err := c.api.GetStatementResult(ctx, &redshiftdata.GetStatementResultInput{
		Id: aws.String(id),
	})
	if err != nil {
		return nil, fmt.Errorf("get statement result %s: %w", id, err)
	}

	rs := &domain.ResultSet{}
	for _, col := range out.ColumnMetadata {
		rs.Columns = append(rs.Columns, aws.ToString(col.Name))
	}
	for _, record := range out.Records {
		row := make([]string, 0, len(record))
		for _, field := range record {
			row = append(row, fieldString(field))
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs, nil
}

func (c *RedshiftData) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func fieldString(f rstypes.Field) string {
	switch v := f.(type) {
	case *rstypes.FieldMemberStringValue:
		return v.Value
	case *rstypes.FieldMemberLongValue:
		return strconv.FormatInt(v.Value, 10)
	case *rstypes.FieldMemberDoubleValue:
		return strconv.FormatFloat(v.Value, 'f', -1, 64)
	case *rstypes.FieldMemberBooleanValue:
		return strconv.FormatBool(v.Value)
	case *rstypes.FieldMemberIsNull:
		return "NULL"
	case *rstypes.FieldMemberBlobValue:
		return fmt.Sprintf("%x", v.Value)
	default:
		return ""
	}
}
