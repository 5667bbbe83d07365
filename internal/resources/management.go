package resources

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	cfntypes "github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	cptypes "github.com/aws/aws-sdk-go-v2/service/codepipeline/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/synthetics"
	syntheticstypes "github.com/aws/aws-sdk-go-v2/service/synthetics/types"

	"github.com/yairfalse/cfs/internal/pager"
	"github.com/yairfalse/cfs/internal/shape"
	"github.com/yairfalse/cfs/internal/writer"
)

// CodePipeline is not offered in this region.
const pipelinesUnavailable = "ap-northeast-3"

var alarmState = enum("ALARM", "INSUFFICIENT_DATA", "OK")

func queuesKind(c Clients) writer.Kind[string] {
	return writer.Kind[string]{
		Name: "queues",
		Item: shape.String().Max(500),
		Page: identifiers(500),
		List: func(ctx context.Context, region string) pager.Cursor[string] {
			client := c.SQS(region)
			p := sqs.NewListQueuesPaginator(client, &sqs.ListQueuesInput{}, func(o *sqs.ListQueuesPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *sqs.ListQueuesOutput) []string {
				return out.QueueUrls
			})
		},
		Identity: writer.LastSegment(),
	}
}

func topicsKind(c Clients) writer.Kind[snstypes.Topic] {
	item := shape.Object(shape.Required("TopicArn", nameString()))
	return writer.Kind[snstypes.Topic]{
		Name: "topics",
		Item: item,
		Page: bounded(item, 10000),
		List: func(ctx context.Context, region string) pager.Cursor[snstypes.Topic] {
			client := c.SNS(region)
			p := sns.NewListTopicsPaginator(client, &sns.ListTopicsInput{}, func(o *sns.ListTopicsPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *sns.ListTopicsOutput) []snstypes.Topic {
				return out.Topics
			})
		},
		Identity: writer.AfterLast("TopicArn", ":"),
	}
}

func stacksKind(c Clients) writer.Kind[cfntypes.Stack] {
	item := shape.Object(
		shape.Required("StackId", nameString()),
		shape.Optional("StackName", nameString()),
		shape.Optional("CreationTime", shape.Time()),
		shape.Optional("StackStatus", enum(
			"CREATE_COMPLETE", "CREATE_FAILED", "CREATE_IN_PROGRESS",
			"DELETE_COMPLETE", "DELETE_FAILED", "DELETE_IN_PROGRESS",
			"IMPORT_COMPLETE", "IMPORT_IN_PROGRESS",
			"IMPORT_ROLLBACK_COMPLETE", "IMPORT_ROLLBACK_FAILED", "IMPORT_ROLLBACK_IN_PROGRESS",
			"REVIEW_IN_PROGRESS",
			"ROLLBACK_COMPLETE", "ROLLBACK_FAILED", "ROLLBACK_IN_PROGRESS",
			"UPDATE_COMPLETE", "UPDATE_COMPLETE_CLEANUP_IN_PROGRESS", "UPDATE_FAILED", "UPDATE_IN_PROGRESS",
			"UPDATE_ROLLBACK_COMPLETE", "UPDATE_ROLLBACK_COMPLETE_CLEANUP_IN_PROGRESS",
			"UPDATE_ROLLBACK_FAILED", "UPDATE_ROLLBACK_IN_PROGRESS",
		)),
		shape.Optional("ChangeSetId", nameString()),
		shape.Optional("Description", textString()),
		shape.Optional("Parameters", shape.Array(shape.Object(
			shape.Optional("ParameterKey", nameString()),
			shape.Optional("ParameterValue", textString()),
			shape.Optional("UsePreviousValue", shape.Bool()),
			shape.Optional("ResolvedValue", textString()),
		))),
		shape.Optional("DeletionTime", shape.Time()),
		shape.Optional("LastUpdatedTime", shape.Time()),
		shape.Optional("StackStatusReason", textString()),
		shape.Optional("DisableRollback", shape.Bool()),
		shape.Optional("NotificationARNs", nameList()),
		shape.Optional("TimeoutInMinutes", shape.Number()),
		shape.Optional("Capabilities", nameList()),
		shape.Optional("Outputs", shape.Array(shape.Object(
			shape.Optional("OutputKey", nameString()),
			shape.Optional("OutputValue", textString()),
			shape.Optional("Description", textString()),
			shape.Optional("ExportName", nameString()),
		))),
		shape.Optional("RoleARN", nameString()),
		shape.Optional("Tags", tagList("Key", "Value")),
		shape.Optional("EnableTerminationProtection", shape.Bool()),
		shape.Optional("ParentId", nameString()),
		shape.Optional("RootId", nameString()),
	)
	return writer.Kind[cfntypes.Stack]{
		Name: "stacks",
		Item: item,
		Page: bounded(item, 10000),
		List: func(ctx context.Context, region string) pager.Cursor[cfntypes.Stack] {
			client := c.CloudFormation(region)
			p := cloudformation.NewDescribeStacksPaginator(client, &cloudformation.DescribeStacksInput{}, func(o *cloudformation.DescribeStacksPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *cloudformation.DescribeStacksOutput) []cfntypes.Stack {
				return out.Stacks
			})
		},
		Identity: writer.After("StackId", ":stack/"),
	}
}

func metricAlarmsKind(c Clients) writer.Kind[cwtypes.MetricAlarm] {
	dimensions := shape.Array(shape.Object(
		shape.Optional("Name", nameString()),
		shape.Optional("Value", nameString()),
	))
	item := shape.Object(
		shape.Required("AlarmArn", nameString()),
		shape.Optional("AlarmName", nameString()),
		shape.Optional("AlarmDescription", textString()),
		shape.Optional("AlarmConfigurationUpdatedTimestamp", shape.Time()),
		shape.Optional("ActionsEnabled", shape.Bool()),
		shape.Optional("OKActions", nameList()),
		shape.Optional("AlarmActions", nameList()),
		shape.Optional("InsufficientDataActions", nameList()),
		shape.Optional("StateValue", alarmState),
		shape.Optional("StateReason", textString()),
		shape.Optional("StateUpdatedTimestamp", shape.Time()),
		shape.Optional("MetricName", nameString()),
		shape.Optional("Namespace", nameString()),
		shape.Optional("Dimensions", dimensions),
		shape.Optional("Period", shape.Number()),
		shape.Optional("EvaluationPeriods", shape.Number()),
		shape.Optional("DatapointsToAlarm", shape.Number()),
		shape.Optional("Threshold", shape.Number()),
		shape.Optional("TreatMissingData", nameString()),
		shape.Optional("Metrics", shape.Array(shape.Object(
			shape.Optional("Id", nameString()),
			shape.Optional("Expression", textString()),
			shape.Optional("Label", textString()),
			shape.Optional("ReturnData", shape.Bool()),
			shape.Optional("Period", shape.Number()),
			shape.Optional("AccountId", nameString()),
		))),
		shape.Optional("ThresholdMetricId", nameString()),
	)
	return writer.Kind[cwtypes.MetricAlarm]{
		Name: "alarms/metric",
		Item: item,
		Page: bounded(item, 10000),
		List: func(ctx context.Context, region string) pager.Cursor[cwtypes.MetricAlarm] {
			client := c.CloudWatch(region)
			p := cloudwatch.NewDescribeAlarmsPaginator(client, &cloudwatch.DescribeAlarmsInput{
				AlarmTypes: []cwtypes.AlarmType{cwtypes.AlarmTypeMetricAlarm},
			}, func(o *cloudwatch.DescribeAlarmsPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *cloudwatch.DescribeAlarmsOutput) []cwtypes.MetricAlarm {
				return out.MetricAlarms
			})
		},
		Identity: writer.After("AlarmArn", ":alarm:"),
	}
}

func compositeAlarmsKind(c Clients) writer.Kind[cwtypes.CompositeAlarm] {
	item := shape.Object(
		shape.Required("AlarmArn", nameString()),
		shape.Optional("AlarmName", nameString()),
		shape.Optional("AlarmRule", textString()),
		shape.Optional("AlarmDescription", textString()),
		shape.Optional("AlarmConfigurationUpdatedTimestamp", shape.Time()),
		shape.Optional("ActionsEnabled", shape.Bool()),
		shape.Optional("OKActions", nameList()),
		shape.Optional("AlarmActions", nameList()),
		shape.Optional("InsufficientDataActions", nameList()),
		shape.Optional("StateValue", alarmState),
		shape.Optional("StateReason", textString()),
		shape.Optional("StateUpdatedTimestamp", shape.Time()),
	)
	return writer.Kind[cwtypes.CompositeAlarm]{
		Name: "alarms/composite",
		Item: item,
		Page: bounded(item, 10000),
		List: func(ctx context.Context, region string) pager.Cursor[cwtypes.CompositeAlarm] {
			client := c.CloudWatch(region)
			p := cloudwatch.NewDescribeAlarmsPaginator(client, &cloudwatch.DescribeAlarmsInput{
				AlarmTypes: []cwtypes.AlarmType{cwtypes.AlarmTypeCompositeAlarm},
			}, func(o *cloudwatch.DescribeAlarmsPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *cloudwatch.DescribeAlarmsOutput) []cwtypes.CompositeAlarm {
				return out.CompositeAlarms
			})
		},
		Identity: writer.After("AlarmArn", ":alarm:"),
	}
}

func canariesKind(c Clients) writer.Kind[syntheticstypes.Canary] {
	item := shape.Object(
		shape.Required("Id", nameString()),
		shape.Optional("Name", nameString()),
		shape.Optional("ArtifactS3Location", nameString()),
		shape.Optional("ExecutionRoleArn", nameString()),
		shape.Optional("RuntimeVersion", nameString()),
		shape.Optional("SuccessRetentionPeriodInDays", shape.Number()),
		shape.Optional("FailureRetentionPeriodInDays", shape.Number()),
		shape.Optional("Schedule", shape.Object(
			shape.Optional("Expression", nameString()),
			shape.Optional("DurationInSeconds", shape.Number()),
		)),
		shape.Optional("Code", shape.Object(
			shape.Optional("Handler", nameString()),
			shape.Optional("SourceLocationArn", nameString()),
		)),
		shape.Optional("Status", shape.Object(
			shape.Optional("State", textString()),
			shape.Optional("StateReason", textString()),
		)),
		shape.Optional("Timeline", shape.Object(
			shape.Optional("Created", shape.Time()),
			shape.Optional("LastModified", shape.Time()),
			shape.Optional("LastStarted", shape.Time()),
			shape.Optional("LastStopped", shape.Time()),
		)),
		shape.Optional("Tags", shape.Object()),
	)
	return writer.Kind[syntheticstypes.Canary]{
		Name: "canaries",
		Item: item,
		Page: bounded(item, 10000),
		List: func(ctx context.Context, region string) pager.Cursor[syntheticstypes.Canary] {
			client := c.Synthetics(region)
			p := synthetics.NewDescribeCanariesPaginator(client, &synthetics.DescribeCanariesInput{}, func(o *synthetics.DescribeCanariesPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *synthetics.DescribeCanariesOutput) []syntheticstypes.Canary {
				return out.Canaries
			})
		},
		Identity: writer.Field("Id"),
	}
}

func pipelinesKind(c Clients) writer.Kind[cptypes.PipelineSummary] {
	item := shape.Object(
		shape.Required("Name", nameString()),
		shape.Optional("Version", shape.Number()),
		shape.Optional("PipelineType", textString()),
		shape.Optional("ExecutionMode", textString()),
		shape.Optional("Created", shape.Time()),
		shape.Optional("Updated", shape.Time()),
	)
	return writer.Kind[cptypes.PipelineSummary]{
		Name:    "pipelines",
		Exclude: []string{pipelinesUnavailable},
		Item:    item,
		Page:    bounded(item, 10000),
		List: func(ctx context.Context, region string) pager.Cursor[cptypes.PipelineSummary] {
			client := c.CodePipeline(region)
			p := codepipeline.NewListPipelinesPaginator(client, &codepipeline.ListPipelinesInput{}, func(o *codepipeline.ListPipelinesPaginatorOptions) {
				o.StopOnDuplicateToken = true
			})
			return pager.FromPaginator(p.HasMorePages, p.NextPage, func(out *codepipeline.ListPipelinesOutput) []cptypes.PipelineSummary {
				return out.Pipelines
			})
		},
		Identity: writer.Field("Name"),
	}
}
