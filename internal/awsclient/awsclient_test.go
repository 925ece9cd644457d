package awsclient_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/bargain-tracker/internal/awsclient"
	"github.com/donaldgifford/bargain-tracker/internal/config"
)

func TestLoad_StaticCredentialsAndEndpoint(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	awsCfg, err := awsclient.Load(ctx, config.AWSConfig{
		Region:          "us-east-1",
		Endpoint:        "http://localhost:4566",
		AccessKeyID:     "test",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)

	assert.Equal(t, "us-east-1", awsCfg.Region)
	assert.Equal(t, "http://localhost:4566", aws.ToString(awsCfg.BaseEndpoint))

	creds, err := awsCfg.Credentials.Retrieve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "test", creds.AccessKeyID)
	assert.Equal(t, "secret", creds.SecretAccessKey)

	assert.NotNil(t, awsclient.NewSNS(awsCfg))
	assert.NotNil(t, awsclient.NewSQS(awsCfg))
}

func TestLoad_NoEndpointOverride(t *testing.T) {
	t.Parallel()

	awsCfg, err := awsclient.Load(context.Background(), config.AWSConfig{
		Region:          "ap-south-1",
		AccessKeyID:     "test",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	assert.Nil(t, awsCfg.BaseEndpoint)
}
