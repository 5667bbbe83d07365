package resources

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/acm"
	"github.com/aws/aws-sdk-go-v2/service/apigateway"
	"github.com/aws/aws-sdk-go-v2/service/apigatewayv2"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancing"
	"github.com/aws/aws-sdk-go-v2/service/elasticloadbalancingv2"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/kinesis"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/rds"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/synthetics"
)

// GlobalRegion is where account-wide services are queried.
const GlobalRegion = "us-east-1"

// Clients builds a service client for a region. Tests set only the
// constructors their kinds use.
type Clients struct {
	EC2            func(region string) EC2API
	S3             func(region string) S3API
	DynamoDB       func(region string) DynamoDBAPI
	Route53        func(region string) Route53API
	ACM            func(region string) ACMAPI
	Lambda         func(region string) LambdaAPI
	SQS            func(region string) SQSAPI
	SNS            func(region string) SNSAPI
	CloudFront     func(region string) CloudFrontAPI
	APIGateway     func(region string) APIGatewayAPI
	APIGatewayV2   func(region string) APIGatewayV2API
	CloudFormation func(region string) CloudFormationAPI
	CloudWatch     func(region string) CloudWatchAPI
	Synthetics     func(region string) SyntheticsAPI
	SSM            func(region string) SSMAPI
	ELB            func(region string) ELBAPI
	ELBv2          func(region string) ELBv2API
	CodePipeline   func(region string) CodePipelineAPI
	Kinesis        func(region string) KinesisAPI
	IAM            func(region string) IAMAPI
	RDS            func(region string) RDSAPI
	SecretsManager func(region string) SecretsManagerAPI
	CloudWatchLogs func(region string) CloudWatchLogsAPI
}

// NewClients returns constructors for real SDK clients sharing cfg.
func NewClients(cfg aws.Config) Clients {
	return Clients{
		EC2: func(region string) EC2API {
			return ec2.NewFromConfig(cfg, func(o *ec2.Options) { o.Region = region })
		},
		S3: func(region string) S3API {
			return s3.NewFromConfig(cfg, func(o *s3.Options) { o.Region = region })
		},
		DynamoDB: func(region string) DynamoDBAPI {
			return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) { o.Region = region })
		},
		Route53: func(region string) Route53API {
			return route53.NewFromConfig(cfg, func(o *route53.Options) { o.Region = region })
		},
		ACM: func(region string) ACMAPI {
			return acm.NewFromConfig(cfg, func(o *acm.Options) { o.Region = region })
		},
		Lambda: func(region string) LambdaAPI {
			return lambda.NewFromConfig(cfg, func(o *lambda.Options) { o.Region = region })
		},
		SQS: func(region string) SQSAPI {
			return sqs.NewFromConfig(cfg, func(o *sqs.Options) { o.Region = region })
		},
		SNS: func(region string) SNSAPI {
			return sns.NewFromConfig(cfg, func(o *sns.Options) { o.Region = region })
		},
		CloudFront: func(region string) CloudFrontAPI {
			return cloudfront.NewFromConfig(cfg, func(o *cloudfront.Options) { o.Region = region })
		},
		APIGateway: func(region string) APIGatewayAPI {
			return apigateway.NewFromConfig(cfg, func(o *apigateway.Options) { o.Region = region })
		},
		APIGatewayV2: func(region string) APIGatewayV2API {
			return apigatewayv2.NewFromConfig(cfg, func(o *apigatewayv2.Options) { o.Region = region })
		},
		CloudFormation: func(region string) CloudFormationAPI {
			return cloudformation.NewFromConfig(cfg, func(o *cloudformation.Options) { o.Region = region })
		},
		CloudWatch: func(region string) CloudWatchAPI {
			return cloudwatch.NewFromConfig(cfg, func(o *cloudwatch.Options) { o.Region = region })
		},
		Synthetics: func(region string) SyntheticsAPI {
			return synthetics.NewFromConfig(cfg, func(o *synthetics.Options) { o.Region = region })
		},
		SSM: func(region string) SSMAPI {
			return ssm.NewFromConfig(cfg, func(o *ssm.Options) { o.Region = region })
		},
		ELB: func(region string) ELBAPI {
			return elasticloadbalancing.NewFromConfig(cfg, func(o *elasticloadbalancing.Options) { o.Region = region })
		},
		ELBv2: func(region string) ELBv2API {
			return elasticloadbalancingv2.NewFromConfig(cfg, func(o *elasticloadbalancingv2.Options) { o.Region = region })
		},
		CodePipeline: func(region string) CodePipelineAPI {
			return codepipeline.NewFromConfig(cfg, func(o *codepipeline.Options) { o.Region = region })
		},
		Kinesis: func(region string) KinesisAPI {
			return kinesis.NewFromConfig(cfg, func(o *kinesis.Options) { o.Region = region })
		},
		IAM: func(region string) IAMAPI {
			return iam.NewFromConfig(cfg, func(o *iam.Options) { o.Region = region })
		},
		RDS: func(region string) RDSAPI {
			return rds.NewFromConfig(cfg, func(o *rds.Options) { o.Region = region })
		},
		SecretsManager: func(region string) SecretsManagerAPI {
			return secretsmanager.NewFromConfig(cfg, func(o *secretsmanager.Options) { o.Region = region })
		},
		CloudWatchLogs: func(region string) CloudWatchLogsAPI {
			return cloudwatchlogs.NewFromConfig(cfg, func(o *cloudwatchlogs.Options) { o.Region = region })
		},
	}
}
