package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/berge472/izzymart/core/storage"
	"github.com/berge472/izzymart/core/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestNewClient(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
			Bucket:    "test-bucket",
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTP", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "http://localhost:9000",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    false,
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})

	t.Run("EndpointWithHTTPS", func(t *testing.T) {
		cfg := storage.Config{
			Endpoint:  "https://s3.amazonaws.com",
			AccessKey: "testkey",
			SecretKey: "testsecret",
			UseSSL:    true,
			Region:    "us-east-1",
		}

		client, err := storage.NewClient(cfg)
		assert.NoError(t, err)
		assert.NotNil(t, client)
	})
}

func TestEnsureBucket(t *testing.T) {
	t.Run("AlreadyExists", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "izzymart").Return(true, nil)

		err := storage.EnsureBucket(context.Background(), mockClient, "izzymart", "")
		assert.NoError(t, err)
		mockClient.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "izzymart").Return(false, nil)
		mockClient.On("MakeBucket", mock.Anything, "izzymart", mock.Anything).Return(nil)

		err := storage.EnsureBucket(context.Background(), mockClient, "izzymart", "us-east-1")
		assert.NoError(t, err)
		mockClient.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		mockClient := new(mocks.Client)
		mockClient.On("BucketExists", mock.Anything, "izzymart").Return(false, errors.New("unreachable"))

		err := storage.EnsureBucket(context.Background(), mockClient, "izzymart", "")
		assert.Error(t, err)
	})
}
