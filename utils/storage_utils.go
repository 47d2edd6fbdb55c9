package utils

import (
	"bytes"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3 settings come from the environment; the bucket serves public item
// image URLs.
var (
	s3AccessKey = os.Getenv("S3_ACCESS_KEY")
	s3SecretKey = os.Getenv("S3_SECRET_KEY")
	s3Bucket    = os.Getenv("S3_BUCKET")
	s3Region    = os.Getenv("S3_REGION")
	s3Endpoint  = os.Getenv("S3_ENDPOINT")
)

func getS3Client() *s3.S3 {
	sess := session.Must(session.NewSession(&aws.Config{
		Region:   aws.String(s3Region),
		Endpoint: aws.String(s3Endpoint),
		Credentials: credentials.NewStaticCredentials(
			s3AccessKey, s3SecretKey, "",
		),
	}))
	return s3.New(sess)
}

// UploadFileToS3 stores an image and returns its public URL.
func UploadFileToS3(file []byte, fileName string, folder string) (string, error) {
	filePath := fmt.Sprintf("%s/%s", folder, fileName)

	s3Client := getS3Client()

	_, err := s3Client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(s3Bucket),
		Key:           aws.String(filePath),
		Body:          bytes.NewReader(file),
		ContentLength: aws.Int64(int64(len(file))),
		ContentType:   aws.String("image/jpeg"),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to S3: %v", err)
	}

	return fmt.Sprintf("https://%s.%s/%s", s3Bucket, s3Endpoint, filePath), nil
}

// DeleteFileFromS3 removes a stored object; missing objects are not an
// error.
func DeleteFileFromS3(fileName string, folder string) error {
	filePath := fmt.Sprintf("%s/%s", folder, fileName)

	s3Client := getS3Client()

	_, err := s3Client.DeleteObject(&s3.DeleteObjectInput{
		Bucket: aws.String(s3Bucket),
		Key:    aws.String(filePath),
	})
	if err != nil {
		return fmt.Errorf("unable to delete file from S3: %v", err)
	}
	return nil
}
