package resources

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	cwltypes "github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	rdstypes "github.com/aws/aws-sdk-go-v2/service/rds/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"

	"github.com/yairfalse/cfs/internal/pager"
	"github.com/yairfalse/cfs/internal/shape"
	"github.com/yairfalse/cfs/internal/writer"
)

func bucketsKind(c Clients) writer.Kind[s3types.Bucket] {
	item := shape.Object(
		shape.Required("Name", nameString()),
		shape.Optional("CreationDate", shape.Time()),
		shape.Optional("BucketRegion", nameString()),
	)
	return writer.Kind[s3types.Bucket]{
		Name:   "buckets",
		Global: true,
		Item:   item,
		Page:   bounded(item, 10000),
		List: func(ctx context.Context, _ string) pager.Cursor[s3types.Bucket] {
			client := c.S3(GlobalRegion)
			p := s3.NewListBucketsPaginator(client, &s3.ListBucketsInput{}, func(o *s3.ListBucketsPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *s3.ListBucketsOutput) []s3types.Bucket {
				return out.Buckets
			})
		},
		Identity: writer.Field("Name"),
	}
}

func tablesKind(c Clients) writer.Kind[string] {
	return writer.Kind[string]{
		Name: "tables",
		Item: shape.String().Max(500),
		Page: identifiers(500),
		List: func(ctx context.Context, region string) pager.Cursor[string] {
			client := c.DynamoDB(region)
			p := dynamodb.NewListTablesPaginator(client, &dynamodb.ListTablesInput{}, func(o *dynamodb.ListTablesPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *dynamodb.ListTablesOutput) []string {
				return out.TableNames
			})
		},
		Identity: writer.Self(),
	}
}

func streamsKind(c Clients) writer.Kind[string] {
	return writer.Kind[string]{
		Name: "streams",
		Item: shape.String().Max(1000),
		Page: identifiers(1000),
		List: func(ctx context.Context, region string) pager.Cursor[string] {
			client := c.Kinesis(region)
			p := kinesis.NewListStreamsPaginator(client, &kinesis.ListStreamsInput{}, func(o *kinesis.ListStreamsPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *kinesis.ListStreamsOutput) []string {
				return out.StreamNames
			})
		},
		Identity: writer.Self(),
	}
}

func databasesKind(c Clients) writer.Kind[rdstypes.DBCluster] {
	item := shape.Object(
		shape.Required("DBClusterIdentifier", nameString()),
		shape.Optional("DatabaseName", nameString()),
		shape.Optional("DBClusterArn", nameString()),
		shape.Optional("Engine", nameString()),
		shape.Optional("EngineVersion", nameString()),
		shape.Optional("Status", nameString()),
		shape.Optional("Endpoint", nameString()),
		shape.Optional("MultiAZ", shape.Bool()),
		shape.Optional("ClusterCreateTime", shape.Time()),
		shape.Optional("TagList", tagList("Key", "Value")),
	)
	return writer.Kind[rdstypes.DBCluster]{
		Name: "databases",
		Item: item,
		Page: bounded(item, 10000),
		List: func(ctx context.Context, region string) pager.Cursor[rdstypes.DBCluster] {
			client := c.RDS(region)
			p := rds.NewDescribeDBClustersPaginator(client, &rds.DescribeDBClustersInput{
				IncludeShared: aws.Bool(true),
			}, func(o *rds.DescribeDBClustersPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *rds.DescribeDBClustersOutput) []rdstypes.DBCluster {
				return out.DBClusters
			})
		},
		Identity: writer.Field("DBClusterIdentifier"),
	}
}

func logsKind(c Clients) writer.Kind[cwltypes.LogGroup] {
	return writer.Kind[cwltypes.LogGroup]{
		Name: "logs",
		Item: shape.Object(
			shape.Required("LogGroupName", shape.String()),
			shape.Optional("Arn", shape.String()),
			shape.Optional("CreationTime", shape.Number()),
			shape.Optional("RetentionInDays", shape.Number()),
			shape.Optional("StoredBytes", shape.Number()),
			shape.Optional("KmsKeyId", shape.String()),
		),
		List: func(ctx context.Context, region string) pager.Cursor[cwltypes.LogGroup] {
			client := c.CloudWatchLogs(region)
			p := cloudwatchlogs.NewDescribeLogGroupsPaginator(client, &cloudwatchlogs.DescribeLogGroupsInput{}, func(o *cloudwatchlogs.DescribeLogGroupsPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *cloudwatchlogs.DescribeLogGroupsOutput) []cwltypes.LogGroup {
				return out.LogGroups
			})
		},
		Identity: writer.Hierarchy("LogGroupName"),
	}
}

func secretsKind(c Clients) writer.Kind[smtypes.SecretListEntry] {
	return writer.Kind[smtypes.SecretListEntry]{
		Name: "secrets",
		Item: shape.Object(
			shape.Required("Name", shape.String()),
			shape.Optional("ARN", shape.String()),
			shape.Optional("Description", textString()),
			shape.Optional("KmsKeyId", shape.String()),
			shape.Optional("RotationEnabled", shape.Bool()),
			shape.Optional("LastChangedDate", shape.Time()),
			shape.Optional("CreatedDate", shape.Time()),
			shape.Optional("Tags", tagList("Key", "Value")),
		),
		List: func(ctx context.Context, region string) pager.Cursor[smtypes.SecretListEntry] {
			client := c.SecretsManager(region)
			p := secretsmanager.NewListSecretsPaginator(client, &secretsmanager.ListSecretsInput{}, func(o *secretsmanager.ListSecretsPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *secretsmanager.ListSecretsOutput) []smtypes.SecretListEntry {
				return out.SecretList
			})
		},
		Identity: writer.Hierarchy("Name"),
	}
}

func parametersKind(c Clients) writer.Kind[ssmtypes.ParameterMetadata] {
	return writer.Kind[ssmtypes.ParameterMetadata]{
		Name: "parameters",
		Item: shape.Object(
			shape.Required("Name", shape.String()),
			shape.Optional("Type", enum("SecureString", "String", "StringList")),
			shape.Optional("KeyId", shape.String()),
			shape.Optional("LastModifiedDate", shape.Time()),
			shape.Optional("LastModifiedUser", shape.String()),
			shape.Optional("Description", textString()),
			shape.Optional("Version", shape.Number()),
			shape.Optional("Tier", textString()),
			shape.Optional("Policies", shape.Array(shape.Object(
				shape.Optional("PolicyText", textString().Max(1000000)),
				shape.Optional("PolicyType", shape.String()),
				shape.Optional("PolicyStatus", shape.String()),
			))),
			shape.Optional("DataType", shape.String()),
		),
		List: func(ctx context.Context, region string) pager.Cursor[ssmtypes.ParameterMetadata] {
			client := c.SSM(region)
			p := ssm.NewDescribeParametersPaginator(client, &ssm.DescribeParametersInput{}, func(o *ssm.DescribeParametersPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *ssm.DescribeParametersOutput) []ssmtypes.ParameterMetadata {
				return out.Parameters
			})
		},
		Identity: writer.Hierarchy("Name"),
	}
}
