package main

import (
	"encoding/base64"
	"flag"

	easy "git.fiblab.net/utils/logrus-easy-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/course-navigator/task"
	"github.com/tsinghua-fib-lab/course-navigator/utils/config"
)

var (
	// 模拟任务名，为空时随机生成
	job = flag.String("job", "", "the name of the simulation task (empty means random uuid)")
	// 配置文件路径
	configPath = flag.String("config", "", "config file path")
	// 配置文件Base64编码后的数据
	configData = flag.String("config-data", "", "config file base64 encoded data")

	// log
	logLevels = map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"debug":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"critical": logrus.FatalLevel,
		"off":      logrus.PanicLevel,
	}
	logLevel = flag.String("log.level", "info", "日志级别（可选项：trace debug info warn error critical off）")

	log = logrus.WithField("module", "navigator")
)

func main() {
	flag.Parse()
	logrus.SetFormatter(&easy.Formatter{
		TimestampFormat: "2006-01-02 15:04:05.0000",
		LogFormat:       "[%module%] [%time%] [%lvl%] %msg%\n",
	})
	// log: 运行时才修改
	if level, ok := logLevels[*logLevel]; ok {
		logrus.SetLevel(level)
	} else {
		log.Panicf("log.level must be one of %v", logLevels)
	}
	// 获取配置
	var c config.Config
	var err error
	if *configPath != "" {
		c, err = config.Load(*configPath)
		if err != nil {
			log.Panicf("%v", err)
		}
	} else if *configData != "" {
		file, err := base64.StdEncoding.DecodeString(*configData)
		if err != nil {
			log.Panicf("config data load err: %v", err)
		}
		if c, err = config.Parse(file); err != nil {
			log.Panicf("%v", err)
		}
	} else {
		log.Panic("config file or config data must be specified")
	}
	log.Infof("%+v", c)

	if *job == "" {
		*job = uuid.NewString()
	}
	s := task.NewContext(*job, c).Run()
	log.Infof("summary: %v", s)
}
